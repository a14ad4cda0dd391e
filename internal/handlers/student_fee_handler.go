package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"meridian-sms/config"
	"meridian-sms/internal/fees"
	"meridian-sms/models"
)

const feeSummaryTTL = 5 * time.Minute

func feeSummaryCacheKey(studentID uint) string {
	return fmt.Sprintf("student:%d:fee_summary", studentID)
}

// StudentFeeSummary aggregates one student's charges across all periods.
type StudentFeeSummary struct {
	StudentID    uint    `json:"studentId"`
	TotalCharged float64 `json:"totalCharged"`
	TotalPaid    float64 `json:"totalPaid"`
	BalanceDue   float64 `json:"balanceDue"`
	OverdueCount int     `json:"overdueCount"`
	FeeCount     int     `json:"feeCount"`
}

// GetStudentFeeSummaryHandler returns a student's running totals. Results
// are cached in Redis and invalidated by payment and adjustment writes.
func GetStudentFeeSummaryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	cacheKey := feeSummaryCacheKey(id)
	if config.RDB != nil {
		if cached, err := config.RDB.Get(config.Ctx, cacheKey).Result(); err == nil {
			var summary StudentFeeSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				c.JSON(http.StatusOK, summary)
				return
			}
			slog.Warn("Failed to unmarshal cached fee summary", "student_id", id)
		}
	}

	var student models.Student
	if !firstOr404(c, &student, id, "Student") {
		return
	}

	var items []models.StudentFee
	if err := config.DB.Where("student_id = ?", id).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student fees"})
		return
	}

	summary := StudentFeeSummary{StudentID: id, FeeCount: len(items)}
	for _, fee := range items {
		if fee.Status == models.FeeStatusWaived {
			continue
		}
		summary.TotalCharged += fee.Amount - fee.DiscountAmount + fee.AdjustmentTotal + fee.LateFeeTotal
		summary.TotalPaid += fee.PaidAmount
		summary.BalanceDue += fee.Balance()
		if fee.Status == models.FeeStatusOverdue {
			summary.OverdueCount++
		}
	}
	summary.TotalCharged = fees.Round2(summary.TotalCharged)
	summary.TotalPaid = fees.Round2(summary.TotalPaid)
	summary.BalanceDue = fees.Round2(summary.BalanceDue)

	if config.RDB != nil {
		if data, err := json.Marshal(summary); err == nil {
			config.RDB.Set(config.Ctx, cacheKey, data, feeSummaryTTL)
		}
	}

	c.JSON(http.StatusOK, summary)
}

// StudentFeeListItem is the register row: the fee plus joined student and
// category names.
type StudentFeeListItem struct {
	models.StudentFee
	StudentName  string  `json:"studentName"`
	CategoryName string  `json:"categoryName"`
	BalanceDue   float64 `json:"balanceDue"`
}

func ListStudentFeesHandler(c *gin.Context) {
	var items []models.StudentFee
	var totalRows int64

	query := config.DB.Model(&models.StudentFee{}).
		Preload("Student").Preload("FeeCategory")
	if schoolID := c.Query("schoolId"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if studentID := c.Query("studentId"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if period := c.Query("period"); period != "" {
		query = query.Where("period = ?", period)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count student fees"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("due_date desc, id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student fees"})
		return
	}

	rows := make([]StudentFeeListItem, 0, len(items))
	for _, fee := range items {
		row := StudentFeeListItem{StudentFee: fee, BalanceDue: fee.Balance()}
		if fee.Student != nil {
			row.StudentName = fee.Student.FullName()
		}
		if fee.FeeCategory != nil {
			row.CategoryName = fee.FeeCategory.Name
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, rows, totalRows))
}

func GetStudentFeeHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var fee models.StudentFee
	if err := config.DB.Preload("Student").Preload("FeeCategory").First(&fee, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student fee not found"})
		return
	}

	var adjustments []models.FeeAdjustment
	config.DB.Where("student_fee_id = ?", fee.ID).Order("created_at").Find(&adjustments)
	var payments []models.Payment
	config.DB.Where("student_fee_id = ?", fee.ID).Order("payment_date").Find(&payments)

	c.JSON(http.StatusOK, gin.H{
		"fee":         fee,
		"balance":     fee.Balance(),
		"adjustments": adjustments,
		"payments":    payments,
	})
}

// AssessStudentFeeHandler computes and stores a single charge on demand,
// outside the monthly batch (enrollment mid-year, one-time categories).
func AssessStudentFeeHandler(c *gin.Context) {
	var body struct {
		StudentID      uint      `json:"studentId" binding:"required"`
		FeeCategoryID  uint      `json:"feeCategoryId" binding:"required"`
		AcademicYearID uint      `json:"academicYearId" binding:"required"`
		Period         string    `json:"period" binding:"required"`
		DueDate        time.Time `json:"dueDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := fees.NewService(config.DB)
	fee, err := service.Assess(body.StudentID, body.FeeCategoryID, body.AcademicYearID, body.Period, body.DueDate)
	if err != nil {
		if errors.Is(err, fees.ErrNoFeeStructure) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Fee assessment failed", "student_id", body.StudentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assess fee"})
		return
	}
	invalidateCache(feeSummaryCacheKey(body.StudentID))
	c.JSON(http.StatusCreated, fee)
}

// GenerateMonthlyFeesHandler runs the monthly batch for all schools, the
// admin-triggered twin of the cron job.
func GenerateMonthlyFeesHandler(c *gin.Context) {
	month := time.Now()
	if monthStr := c.Query("month"); monthStr != "" {
		parsed, err := time.Parse("2006-01", monthStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must look like 2006-01"})
			return
		}
		month = parsed
	}

	service := fees.NewService(config.DB)
	results, err := service.GenerateMonthly(month)
	if err != nil {
		slog.Error("Monthly fee generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Monthly fee generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": fees.MonthPeriod(month), "schools": results})
}

// ApplyAdjustmentHandler records a signed correction against a fee.
func ApplyAdjustmentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body struct {
		Amount    float64 `json:"amount" binding:"required"`
		Reason    string  `json:"reason" binding:"required"`
		AppliedBy string  `json:"appliedBy"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := fees.NewService(config.DB)
	fee, err := service.ApplyAdjustment(id, body.Amount, body.Reason, body.AppliedBy)
	if err != nil {
		switch {
		case errors.Is(err, fees.ErrFeeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, fees.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("Adjustment failed", "fee_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply adjustment"})
		}
		return
	}
	invalidateCache(feeSummaryCacheKey(fee.StudentID))
	c.JSON(http.StatusOK, fee)
}

// WaiveStudentFeeHandler closes a fee without payment.
func WaiveStudentFeeHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var fee models.StudentFee
	if !firstOr404(c, &fee, id, "Student fee") {
		return
	}
	if fee.Status == models.FeeStatusPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "A paid fee cannot be waived"})
		return
	}

	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fee.Status = models.FeeStatusWaived
	fee.Breakdown.Lines = append(fee.Breakdown.Lines, models.BreakdownLine{
		Kind:   models.BreakdownLineAdjustment,
		Label:  "Waived: " + body.Reason,
		Date:   time.Now().UTC(),
	})
	if err := config.DB.Save(&fee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to waive fee"})
		return
	}
	invalidateCache(feeSummaryCacheKey(fee.StudentID))
	c.JSON(http.StatusOK, fee)
}

// ExportStudentFeesHandler streams the fee register as an Excel workbook.
func ExportStudentFeesHandler(c *gin.Context) {
	var items []models.StudentFee
	query := config.DB.Preload("Student").Preload("FeeCategory").Order("period desc, id")
	if schoolID := c.Query("schoolId"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if period := c.Query("period"); period != "" {
		query = query.Where("period = ?", period)
	}
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student fees"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No student fees found to export"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Fee register"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Student", "Category", "Period", "Amount", "Discount", "Adjustments", "Late fees", "Paid", "Balance", "Due date", "Status"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, fee := range items {
		row := i + 2
		studentName := ""
		if fee.Student != nil {
			studentName = fee.Student.FullName()
		}
		categoryName := ""
		if fee.FeeCategory != nil {
			categoryName = fee.FeeCategory.Name
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), fee.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), studentName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), categoryName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), fee.Period)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), fee.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), fee.DiscountAmount)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), fee.AdjustmentTotal)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), fee.LateFeeTotal)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), fee.PaidAmount)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), fee.Balance())
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), fee.DueDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), fee.Status)
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=fee_register.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		slog.Error("Failed to write Excel export", "error", err)
	}
}

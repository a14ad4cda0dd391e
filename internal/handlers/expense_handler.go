package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meridian-sms/config"
	"meridian-sms/models"
)

type ExpenseInput struct {
	SchoolID    uint      `json:"schoolId" binding:"required"`
	PayeeID     uint      `json:"payeeId" binding:"required"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	ExpenseDate time.Time `json:"expenseDate" binding:"required"`
	Memo        string    `json:"memo"`
}

func expenseQuery(c *gin.Context) *gorm.DB {
	query := config.DB.Model(&models.Expense{}).Preload("Payee")
	if schoolID := c.Query("schoolId"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if payeeID := c.Query("payeeId"); payeeID != "" {
		query = query.Where("payee_id = ?", payeeID)
	}
	if month := c.Query("month"); month != "" {
		if start, err := time.Parse("2006-01", month); err == nil {
			query = query.Where("expense_date >= ? AND expense_date < ?", start, start.AddDate(0, 1, 0))
		}
	}
	return query
}

func ListExpensesHandler(c *gin.Context) {
	var expenses []models.Expense
	var totalRows int64

	query := expenseQuery(c)
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count expenses"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("expense_date desc").Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, expenses, totalRows))
}

func CreateExpenseHandler(c *gin.Context) {
	var input ExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var payee models.Payee
	if !firstOr404(c, &payee, input.PayeeID, "Payee") {
		return
	}
	if payee.IsActive != nil && !*payee.IsActive {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Payee is deactivated"})
		return
	}

	expense := models.Expense{
		SchoolID:    input.SchoolID,
		PayeeID:     input.PayeeID,
		Category:    input.Category,
		Amount:      input.Amount,
		ExpenseDate: input.ExpenseDate,
		Memo:        input.Memo,
	}
	if err := config.DB.Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func UpdateExpenseHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var expense models.Expense
	if !firstOr404(c, &expense, id, "Expense") {
		return
	}

	var input ExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	expense.PayeeID = input.PayeeID
	expense.Category = input.Category
	expense.Amount = input.Amount
	expense.ExpenseDate = input.ExpenseDate
	expense.Memo = input.Memo
	if err := config.DB.Save(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
		return
	}
	c.JSON(http.StatusOK, expense)
}

func DeleteExpenseHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.Expense{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}

// ExportExpensesHandler downloads the filtered expenses as a CSV file.
func ExportExpensesHandler(c *gin.Context) {
	var expenses []models.Expense
	if err := expenseQuery(c).Order("expense_date").Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
		return
	}
	if len(expenses) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No expenses found to export"})
		return
	}

	b := &bytes.Buffer{}
	b.Write([]byte{0xEF, 0xBB, 0xBF}) // BOM for UTF-8

	w := csv.NewWriter(b)
	w.Comma = ';'

	headers := []string{"ID", "Date", "Payee", "Category", "Amount", "Memo"}
	if err := w.Write(headers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV header"})
		return
	}

	for _, expense := range expenses {
		payeeName := ""
		if expense.Payee != nil {
			payeeName = expense.Payee.Name
		}
		record := []string{
			strconv.Itoa(int(expense.ID)),
			expense.ExpenseDate.Format("2006-01-02"),
			payeeName,
			expense.Category,
			fmt.Sprintf("%.2f", expense.Amount),
			expense.Memo,
		}
		if err := w.Write(record); err != nil {
			continue
		}
	}
	w.Flush()

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=expenses_export.csv")
	c.Data(http.StatusOK, "text/csv", b.Bytes())
}

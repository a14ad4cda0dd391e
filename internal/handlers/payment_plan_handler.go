package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/internal/fees"
	"meridian-sms/models"
)

type PaymentPlanInput struct {
	SchoolID     uint   `json:"schoolId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Installments []struct {
		Month   string `json:"month" binding:"required"`
		Day     int    `json:"day" binding:"required,min=1,max=28"`
		Formula string `json:"formula" binding:"required"`
	} `json:"installments" binding:"required,min=1"`
}

func ListPaymentPlansHandler(c *gin.Context) {
	schoolID, err := parseQueryUint(c, "schoolId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schoolId query parameter is required"})
		return
	}
	resourceID, ok := resourceSchoolID(c, schoolID)
	if !ok {
		return
	}

	var plans []models.PaymentPlan
	if err := config.DB.Preload("Installments").Where("school_id = ?", resourceID).Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

func CreatePaymentPlanHandler(c *gin.Context) {
	var input PaymentPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := models.PaymentPlan{SchoolID: input.SchoolID, Name: input.Name}
	for _, installment := range input.Installments {
		// reject broken formulas at configuration time, not at generation
		if _, err := fees.EvaluateInstallment(installment.Formula, 100, 0); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		plan.Installments = append(plan.Installments, models.PlanInstallment{
			Month:   installment.Month,
			Day:     installment.Day,
			Formula: installment.Formula,
		})
	}

	if err := config.DB.Create(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment plan"})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// UpdatePaymentPlanHandler replaces a plan's name and installment set.
// Schedules already generated from the old installments are untouched.
func UpdatePaymentPlanHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var plan models.PaymentPlan
	if !firstOr404(c, &plan, id, "Payment plan") {
		return
	}

	var input PaymentPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, installment := range input.Installments {
		if _, err := fees.EvaluateInstallment(installment.Formula, 100, 0); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	tx := config.DB.Begin()
	if err := tx.Where("payment_plan_id = ?", plan.ID).Delete(&models.PlanInstallment{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace plan installments"})
		return
	}
	plan.Name = input.Name
	for _, installment := range input.Installments {
		plan.Installments = append(plan.Installments, models.PlanInstallment{
			PaymentPlanID: plan.ID,
			Month:         installment.Month,
			Day:           installment.Day,
			Formula:       installment.Formula,
		})
	}
	if err := tx.Save(&plan).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment plan"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func DeletePaymentPlanHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tx := config.DB.Begin()
	if err := tx.Where("payment_plan_id = ?", id).Delete(&models.PlanInstallment{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete plan installments"})
		return
	}
	if err := tx.Delete(&models.PaymentPlan{}, id).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment plan"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment plan deleted"})
}

// GenerateFeeScheduleHandler splits one student fee into installments
// using a payment plan's formulas. A previous schedule for the fee is
// replaced in the same transaction.
func GenerateFeeScheduleHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		PaymentPlanID uint `json:"paymentPlanId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment plan is not specified"})
		return
	}

	var fee models.StudentFee
	if !firstOr404(c, &fee, id, "Student fee") {
		return
	}
	var plan models.PaymentPlan
	if err := config.DB.Preload("Installments").First(&plan, body.PaymentPlanID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment plan not found"})
		return
	}
	if len(plan.Installments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment plan has no installments"})
		return
	}

	var year models.AcademicYear
	if !firstOr404(c, &year, fee.AcademicYearID, "Academic year") {
		return
	}
	yearStart := year.StartDate
	if yearStart.IsZero() {
		yearStart = time.Now()
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Where("student_fee_id = ?", fee.ID).Delete(&models.FeeInstallment{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete previous schedule"})
		return
	}

	var schedule []models.FeeInstallment
	for _, installment := range plan.Installments {
		amount, err := fees.EvaluateInstallment(installment.Formula, fee.Amount, fee.DiscountAmount)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		schedule = append(schedule, models.FeeInstallment{
			StudentFeeID: fee.ID,
			Label:        fmt.Sprintf("Installment for %s", installment.Month),
			DueDate:      fees.InstallmentDate(yearStart, installment.Month, installment.Day),
			Amount:       amount,
		})
	}

	if err := tx.Create(&schedule).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save schedule"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// ListFeeScheduleHandler returns the generated installments for a fee.
func ListFeeScheduleHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var schedule []models.FeeInstallment
	if err := config.DB.Where("student_fee_id = ?", id).Order("due_date").Find(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

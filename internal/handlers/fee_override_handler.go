package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

type FeeOverrideInput struct {
	StudentID      uint    `json:"studentId" binding:"required"`
	FeeCategoryID  uint    `json:"feeCategoryId" binding:"required"`
	AcademicYearID uint    `json:"academicYearId" binding:"required"`
	Amount         float64 `json:"amount" binding:"gte=0"`
	Reason         string  `json:"reason" binding:"required"`
}

func ListFeeOverridesHandler(c *gin.Context) {
	var overrides []models.FeeOverride
	query := config.DB.Order("created_at desc")
	if studentID := c.Query("studentId"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if yearID := c.Query("academicYearId"); yearID != "" {
		query = query.Where("academic_year_id = ?", yearID)
	}
	if err := query.Find(&overrides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fee overrides"})
		return
	}
	c.JSON(http.StatusOK, overrides)
}

// CreateFeeOverrideHandler sets the replacement amount for one student,
// category and year. Only fees assessed after the override pick it up;
// already-generated charges keep their breakdown.
func CreateFeeOverrideHandler(c *gin.Context) {
	var input FeeOverrideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var student models.Student
	if !firstOr404(c, &student, input.StudentID, "Student") {
		return
	}

	override := models.FeeOverride{
		SchoolID:       student.SchoolID,
		StudentID:      input.StudentID,
		FeeCategoryID:  input.FeeCategoryID,
		AcademicYearID: input.AcademicYearID,
		Amount:         input.Amount,
		Reason:         input.Reason,
	}
	if err := config.DB.Create(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fee override"})
		return
	}
	c.JSON(http.StatusCreated, override)
}

func UpdateFeeOverrideHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var override models.FeeOverride
	if !firstOr404(c, &override, id, "Fee override") {
		return
	}

	var body struct {
		Amount float64 `json:"amount" binding:"gte=0"`
		Reason string  `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	override.Amount = body.Amount
	if body.Reason != "" {
		override.Reason = body.Reason
	}
	if err := config.DB.Save(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update fee override"})
		return
	}
	c.JSON(http.StatusOK, override)
}

func DeleteFeeOverrideHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.FeeOverride{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete fee override"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fee override deleted"})
}

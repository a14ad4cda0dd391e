package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

type FeeStructureInput struct {
	SchoolID       uint    `json:"schoolId" binding:"required"`
	AcademicYearID uint    `json:"academicYearId" binding:"required"`
	GradeLevelID   uint    `json:"gradeLevelId" binding:"required"`
	FeeCategoryID  uint    `json:"feeCategoryId" binding:"required"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
}

// ListFeeStructuresHandler returns the structures of a school (the parent
// school for a campus), optionally narrowed to one academic year.
func ListFeeStructuresHandler(c *gin.Context) {
	schoolID, err := parseQueryUint(c, "schoolId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schoolId query parameter is required"})
		return
	}
	resourceID, ok := resourceSchoolID(c, schoolID)
	if !ok {
		return
	}

	query := config.DB.Preload("FeeCategory").Preload("GradeLevel").
		Where("school_id = ?", resourceID)
	if yearID := c.Query("academicYearId"); yearID != "" {
		query = query.Where("academic_year_id = ?", yearID)
	}

	var structures []models.FeeStructure
	if err := query.Find(&structures).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fee structures"})
		return
	}
	c.JSON(http.StatusOK, structures)
}

func CreateFeeStructureHandler(c *gin.Context) {
	var input FeeStructureInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var school models.School
	if !firstOr404(c, &school, input.SchoolID, "School") {
		return
	}
	if school.IsCampus() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fee structures belong to the parent school, not a campus"})
		return
	}

	structure := models.FeeStructure{
		SchoolID:       input.SchoolID,
		AcademicYearID: input.AcademicYearID,
		GradeLevelID:   input.GradeLevelID,
		FeeCategoryID:  input.FeeCategoryID,
		Amount:         input.Amount,
	}
	if err := config.DB.Create(&structure).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fee structure"})
		return
	}
	c.JSON(http.StatusCreated, structure)
}

// BulkUpdateFeeStructuresHandler updates the amounts of several structure
// rows in one transaction, the yearly reprice operation.
func BulkUpdateFeeStructuresHandler(c *gin.Context) {
	var updates []struct {
		ID     uint    `json:"id" binding:"required"`
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data provided"})
		return
	}

	tx := config.DB.Begin()
	for _, update := range updates {
		if err := tx.Model(&models.FeeStructure{}).Where("id = ?", update.ID).
			Update("amount", update.Amount).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update fee structures"})
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fee structures updated"})
}

func UpdateFeeStructureHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var structure models.FeeStructure
	if !firstOr404(c, &structure, id, "Fee structure") {
		return
	}

	var body struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	structure.Amount = body.Amount
	if err := config.DB.Save(&structure).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update fee structure"})
		return
	}
	c.JSON(http.StatusOK, structure)
}

func DeleteFeeStructureHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.FeeStructure{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete fee structure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fee structure deleted"})
}

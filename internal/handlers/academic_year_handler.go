package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

type AcademicYearInput struct {
	SchoolID  uint      `json:"schoolId" binding:"required"`
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// resourceSchoolID resolves the owning school for school-wide resources:
// campuses fall through to their parent.
func resourceSchoolID(c *gin.Context, schoolID uint) (uint, bool) {
	var school models.School
	if !firstOr404(c, &school, schoolID, "School") {
		return 0, false
	}
	return school.ResourceSchoolID(), true
}

// ListAcademicYearsHandler returns the years of the school given in the
// "schoolId" query parameter. For a campus these are the parent's years.
func ListAcademicYearsHandler(c *gin.Context) {
	schoolID, err := parseQueryUint(c, "schoolId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schoolId query parameter is required"})
		return
	}
	resourceID, ok := resourceSchoolID(c, schoolID)
	if !ok {
		return
	}

	var years []models.AcademicYear
	if err := config.DB.Where("school_id = ?", resourceID).Order("start_date desc").Find(&years).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch academic years"})
		return
	}
	c.JSON(http.StatusOK, years)
}

func CreateAcademicYearHandler(c *gin.Context) {
	var input AcademicYearInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var school models.School
	if !firstOr404(c, &school, input.SchoolID, "School") {
		return
	}
	if school.IsCampus() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Academic years belong to the parent school, not a campus"})
		return
	}

	year := models.AcademicYear{
		SchoolID:  input.SchoolID,
		Name:      input.Name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := config.DB.Create(&year).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create academic year"})
		return
	}
	c.JSON(http.StatusCreated, year)
}

func UpdateAcademicYearHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var year models.AcademicYear
	if !firstOr404(c, &year, id, "Academic year") {
		return
	}

	var input AcademicYearInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	year.Name = input.Name
	year.StartDate = input.StartDate
	year.EndDate = input.EndDate
	if err := config.DB.Save(&year).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update academic year"})
		return
	}
	c.JSON(http.StatusOK, year)
}

// SetCurrentAcademicYearHandler marks one year current and clears the
// flag on the school's other years in a single transaction.
func SetCurrentAcademicYearHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var year models.AcademicYear
	if !firstOr404(c, &year, id, "Academic year") {
		return
	}

	tx := config.DB.Begin()
	if err := tx.Model(&models.AcademicYear{}).
		Where("school_id = ? AND id <> ?", year.SchoolID, year.ID).
		Update("is_current", false).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear current year flags"})
		return
	}
	if err := tx.Model(&year).Update("is_current", true).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set current year"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Academic year set as current"})
}

func DeleteAcademicYearHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.AcademicYear{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete academic year"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Academic year deleted"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

// SchoolInput binds create/update payloads for schools and campuses.
type SchoolInput struct {
	Name           string `json:"name" binding:"required"`
	Code           string `json:"code" binding:"required"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	ParentSchoolID *uint  `json:"parentSchoolId"`
}

func ListSchoolsHandler(c *gin.Context) {
	var schools []models.School
	query := config.DB.Order("name")
	if c.Query("campusesOf") != "" {
		query = query.Where("parent_school_id = ?", c.Query("campusesOf"))
	}
	if err := query.Find(&schools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schools"})
		return
	}
	c.JSON(http.StatusOK, schools)
}

func CreateSchoolHandler(c *gin.Context) {
	var input SchoolInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.ParentSchoolID != nil {
		var parent models.School
		if !firstOr404(c, &parent, *input.ParentSchoolID, "Parent school") {
			return
		}
		// one campus level only
		if parent.IsCampus() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A campus cannot itself have campuses"})
			return
		}
	}

	school := models.School{
		Name:           input.Name,
		Code:           input.Code,
		Address:        input.Address,
		Phone:          input.Phone,
		ParentSchoolID: input.ParentSchoolID,
	}
	if err := config.DB.Create(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create school"})
		return
	}
	c.JSON(http.StatusCreated, school)
}

func GetSchoolHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var school models.School
	if err := config.DB.Preload("ParentSchool").First(&school, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}
	c.JSON(http.StatusOK, school)
}

func UpdateSchoolHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var school models.School
	if !firstOr404(c, &school, id, "School") {
		return
	}

	var input SchoolInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	school.Name = input.Name
	school.Code = input.Code
	school.Address = input.Address
	school.Phone = input.Phone
	if err := config.DB.Save(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update school"})
		return
	}
	c.JSON(http.StatusOK, school)
}

func DeleteSchoolHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var campuses int64
	config.DB.Model(&models.School{}).Where("parent_school_id = ?", id).Count(&campuses)
	if campuses > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "School still has campuses"})
		return
	}

	if err := config.DB.Delete(&models.School{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete school"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "School deleted"})
}

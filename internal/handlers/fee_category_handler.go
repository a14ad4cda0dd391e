package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

type FeeCategoryInput struct {
	SchoolID   uint   `json:"schoolId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Recurrence string `json:"recurrence" binding:"required,oneof=monthly annual one_time"`
}

func ListFeeCategoriesHandler(c *gin.Context) {
	schoolID, err := parseQueryUint(c, "schoolId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schoolId query parameter is required"})
		return
	}
	resourceID, ok := resourceSchoolID(c, schoolID)
	if !ok {
		return
	}

	var categories []models.FeeCategory
	if err := config.DB.Where("school_id = ?", resourceID).Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fee categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func CreateFeeCategoryHandler(c *gin.Context) {
	var input FeeCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := models.FeeCategory{
		SchoolID:   input.SchoolID,
		Name:       input.Name,
		Recurrence: input.Recurrence,
	}
	if err := config.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fee category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func UpdateFeeCategoryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var category models.FeeCategory
	if !firstOr404(c, &category, id, "Fee category") {
		return
	}

	var input FeeCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category.Name = input.Name
	category.Recurrence = input.Recurrence
	if err := config.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update fee category"})
		return
	}
	c.JSON(http.StatusOK, category)
}

func DeleteFeeCategoryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var charged int64
	config.DB.Model(&models.StudentFee{}).Where("fee_category_id = ?", id).Count(&charged)
	if charged > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Fee category already has charges"})
		return
	}

	if err := config.DB.Delete(&models.FeeCategory{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete fee category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fee category deleted"})
}

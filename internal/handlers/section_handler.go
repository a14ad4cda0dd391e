package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

func ListSectionsHandler(c *gin.Context) {
	var sections []models.Section
	query := config.DB.Preload("GradeLevel").Order("name")
	if c.Query("gradeLevelId") != "" {
		query = query.Where("grade_level_id = ?", c.Query("gradeLevelId"))
	}
	if err := query.Find(&sections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sections"})
		return
	}
	c.JSON(http.StatusOK, sections)
}

func CreateSectionHandler(c *gin.Context) {
	var input models.SectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var level models.GradeLevel
	if !firstOr404(c, &level, input.GradeLevelID, "Grade level") {
		return
	}

	section := models.Section{
		GradeLevelID:    input.GradeLevelID,
		Name:            input.Name,
		HomeroomTeacher: input.HomeroomTeacher,
	}
	if err := config.DB.Create(&section).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create section"})
		return
	}
	invalidateCache(gradeStatsCacheKey(section.GradeLevelID))
	c.JSON(http.StatusCreated, section)
}

func GetSectionHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var section models.Section
	if err := config.DB.Preload("GradeLevel").First(&section, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
		return
	}
	c.JSON(http.StatusOK, section)
}

func UpdateSectionHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var section models.Section
	if !firstOr404(c, &section, id, "Section") {
		return
	}

	var input models.SectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	oldGrade := section.GradeLevelID
	section.GradeLevelID = input.GradeLevelID
	section.Name = input.Name
	section.HomeroomTeacher = input.HomeroomTeacher
	if err := config.DB.Save(&section).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update section"})
		return
	}
	invalidateCache(gradeStatsCacheKey(oldGrade))
	invalidateCache(gradeStatsCacheKey(section.GradeLevelID))
	c.JSON(http.StatusOK, section)
}

func DeleteSectionHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var section models.Section
	if !firstOr404(c, &section, id, "Section") {
		return
	}

	var students int64
	config.DB.Model(&models.Student{}).Where("section_id = ?", id).Count(&students)
	if students > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Section still has students"})
		return
	}

	if err := config.DB.Delete(&section).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete section"})
		return
	}
	invalidateCache(gradeStatsCacheKey(section.GradeLevelID))
	c.JSON(http.StatusOK, gin.H{"message": "Section deleted"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

type SubjectInput struct {
	SchoolID uint   `json:"schoolId" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

func ListSubjectsHandler(c *gin.Context) {
	var subjects []models.Subject
	query := config.DB.Order("name")
	if c.Query("schoolId") != "" {
		query = query.Where("school_id = ?", c.Query("schoolId"))
	}
	if err := query.Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subjects"})
		return
	}
	c.JSON(http.StatusOK, subjects)
}

func CreateSubjectHandler(c *gin.Context) {
	var input SubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subject := models.Subject{SchoolID: input.SchoolID, Name: input.Name}
	if err := config.DB.Create(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subject"})
		return
	}
	c.JSON(http.StatusCreated, subject)
}

func UpdateSubjectHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var subject models.Subject
	if !firstOr404(c, &subject, id, "Subject") {
		return
	}

	var input SubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subject.Name = input.Name
	if err := config.DB.Save(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subject"})
		return
	}
	c.JSON(http.StatusOK, subject)
}

func DeleteSubjectHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.Subject{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subject"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subject deleted"})
}

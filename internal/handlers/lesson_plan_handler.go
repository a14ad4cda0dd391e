package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

type LessonPlanInput struct {
	SchoolID  uint      `json:"schoolId" binding:"required"`
	SectionID uint      `json:"sectionId" binding:"required"`
	SubjectID uint      `json:"subjectId" binding:"required"`
	Teacher   string    `json:"teacher" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	Title     string    `json:"title" binding:"required"`
	Content   string    `json:"content"`
}

func ListLessonPlansHandler(c *gin.Context) {
	var plans []models.LessonPlan
	var totalRows int64

	query := config.DB.Model(&models.LessonPlan{}).Preload("Section").Preload("Subject")
	if schoolID := c.Query("schoolId"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if sectionID := c.Query("sectionId"); sectionID != "" {
		query = query.Where("section_id = ?", sectionID)
	}
	if teacher := c.Query("teacher"); teacher != "" {
		query = query.Where("teacher = ?", teacher)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count lesson plans"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("date desc").Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lesson plans"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, plans, totalRows))
}

func CreateLessonPlanHandler(c *gin.Context) {
	var input LessonPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan := models.LessonPlan{
		SchoolID:  input.SchoolID,
		SectionID: input.SectionID,
		SubjectID: input.SubjectID,
		Teacher:   input.Teacher,
		Date:      input.Date,
		Title:     input.Title,
		Content:   input.Content,
		Status:    models.LessonPlanDraft,
	}
	if err := config.DB.Create(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lesson plan"})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func GetLessonPlanHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var plan models.LessonPlan
	if err := config.DB.Preload("Section").Preload("Subject").First(&plan, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson plan not found"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func UpdateLessonPlanHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var plan models.LessonPlan
	if !firstOr404(c, &plan, id, "Lesson plan") {
		return
	}

	var input LessonPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan.SectionID = input.SectionID
	plan.SubjectID = input.SubjectID
	plan.Teacher = input.Teacher
	plan.Date = input.Date
	plan.Title = input.Title
	plan.Content = input.Content
	if err := config.DB.Save(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lesson plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// PublishLessonPlanHandler moves a draft plan to published.
func PublishLessonPlanHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Model(&models.LessonPlan{}).Where("id = ?", id).
		Update("status", models.LessonPlanPublished).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish lesson plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson plan published"})
}

func DeleteLessonPlanHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.LessonPlan{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lesson plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson plan deleted"})
}

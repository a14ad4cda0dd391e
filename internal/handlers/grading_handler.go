package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meridian-sms/config"
	"meridian-sms/models"
)

// --- Grading periods ---

type GradingPeriodInput struct {
	AcademicYearID uint      `json:"academicYearId" binding:"required"`
	Name           string    `json:"name" binding:"required"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

func ListGradingPeriodsHandler(c *gin.Context) {
	var periods []models.GradingPeriod
	query := config.DB.Order("start_date")
	if yearID := c.Query("academicYearId"); yearID != "" {
		query = query.Where("academic_year_id = ?", yearID)
	}
	if err := query.Find(&periods).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch grading periods"})
		return
	}
	c.JSON(http.StatusOK, periods)
}

func CreateGradingPeriodHandler(c *gin.Context) {
	var input GradingPeriodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	period := models.GradingPeriod{
		AcademicYearID: input.AcademicYearID,
		Name:           input.Name,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
	}
	if err := config.DB.Create(&period).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create grading period"})
		return
	}
	c.JSON(http.StatusCreated, period)
}

func DeleteGradingPeriodHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var entries int64
	config.DB.Model(&models.GradeEntry{}).Where("grading_period_id = ?", id).Count(&entries)
	if entries > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Grading period already has grade entries"})
		return
	}

	if err := config.DB.Delete(&models.GradingPeriod{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete grading period"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Grading period deleted"})
}

// --- Grade entries ---

type GradeEntryInput struct {
	StudentID       uint    `json:"studentId" binding:"required"`
	SubjectID       uint    `json:"subjectId" binding:"required"`
	GradingPeriodID uint    `json:"gradingPeriodId" binding:"required"`
	SectionID       uint    `json:"sectionId" binding:"required"`
	Score           float64 `json:"score" binding:"gte=0"`
	MaxScore        float64 `json:"maxScore"`
	Remark          string  `json:"remark"`
}

// UpsertGradeEntryHandler records a score. One entry exists per student,
// subject and period; resubmitting replaces the score in place.
func UpsertGradeEntryHandler(c *gin.Context) {
	var input GradeEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.MaxScore == 0 {
		input.MaxScore = 100
	}
	if input.Score > input.MaxScore {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Score cannot exceed the maximum"})
		return
	}

	var entry models.GradeEntry
	err := config.DB.Where("student_id = ? AND subject_id = ? AND grading_period_id = ?",
		input.StudentID, input.SubjectID, input.GradingPeriodID).First(&entry).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load grade entry"})
		return
	}

	created := errors.Is(err, gorm.ErrRecordNotFound)
	entry.StudentID = input.StudentID
	entry.SubjectID = input.SubjectID
	entry.GradingPeriodID = input.GradingPeriodID
	entry.SectionID = input.SectionID
	entry.Score = input.Score
	entry.MaxScore = input.MaxScore
	entry.Remark = input.Remark

	if err := config.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save grade entry"})
		return
	}
	if created {
		c.JSON(http.StatusCreated, entry)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func ListGradeEntriesHandler(c *gin.Context) {
	var entries []models.GradeEntry
	query := config.DB.Preload("Student").Preload("Subject")
	if sectionID := c.Query("sectionId"); sectionID != "" {
		query = query.Where("section_id = ?", sectionID)
	}
	if studentID := c.Query("studentId"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if periodID := c.Query("gradingPeriodId"); periodID != "" {
		query = query.Where("grading_period_id = ?", periodID)
	}
	if err := query.Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch grade entries"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func DeleteGradeEntryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.GradeEntry{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete grade entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Grade entry deleted"})
}

// --- Summaries ---

// SubjectAverage is one subject's mean score within a section summary.
type SubjectAverage struct {
	SubjectID   uint    `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	Average     float64 `json:"average"`
	Entries     int64   `json:"entries"`
}

// StudentAverage is one student's mean score across subjects.
type StudentAverage struct {
	StudentID   uint    `json:"studentId"`
	StudentName string  `json:"studentName"`
	Average     float64 `json:"average"`
	Entries     int64   `json:"entries"`
}

// GetSectionGradeSummaryHandler aggregates a section's scores for one
// grading period: per-subject averages plus the overall mean.
func GetSectionGradeSummaryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	periodID, err := parseQueryUint(c, "gradingPeriodId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gradingPeriodId query parameter is required"})
		return
	}

	var subjects []SubjectAverage
	if err := config.DB.Table("grade_entries").
		Select(`
            grade_entries.subject_id,
            subjects.name as subject_name,
            AVG(grade_entries.score / NULLIF(grade_entries.max_score, 0) * 100) as average,
            COUNT(*) as entries
        `).
		Joins("JOIN subjects ON subjects.id = grade_entries.subject_id").
		Where("grade_entries.section_id = ? AND grade_entries.grading_period_id = ? AND grade_entries.deleted_at IS NULL", id, periodID).
		Group("grade_entries.subject_id, subjects.name").
		Order("subjects.name").
		Scan(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate grades"})
		return
	}

	var students []StudentAverage
	if err := config.DB.Table("grade_entries").
		Select(`
            grade_entries.student_id,
            TRIM(students.last_name || ' ' || students.first_name) as student_name,
            AVG(grade_entries.score / NULLIF(grade_entries.max_score, 0) * 100) as average,
            COUNT(*) as entries
        `).
		Joins("JOIN students ON students.id = grade_entries.student_id").
		Where("grade_entries.section_id = ? AND grade_entries.grading_period_id = ? AND grade_entries.deleted_at IS NULL", id, periodID).
		Group("grade_entries.student_id, students.last_name, students.first_name").
		Order("student_name").
		Scan(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate grades"})
		return
	}

	var overall float64
	var count int64
	for _, subject := range subjects {
		overall += subject.Average * float64(subject.Entries)
		count += subject.Entries
	}
	if count > 0 {
		overall /= float64(count)
	}

	c.JSON(http.StatusOK, gin.H{
		"sectionId":       id,
		"gradingPeriodId": periodID,
		"subjects":        subjects,
		"students":        students,
		"overallAverage":  overall,
	})
}

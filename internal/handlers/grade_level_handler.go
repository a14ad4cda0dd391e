package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

type GradeLevelInput struct {
	SchoolID uint   `json:"schoolId" binding:"required"`
	Level    int    `json:"level" binding:"required,min=0,max=12"`
	Name     string `json:"name" binding:"required"`
}

// ListGradeLevelsHandler returns the grade levels of the school given in
// the "schoolId" query parameter. Grade levels are a school-wide resource
// like academic years: for a campus these are the parent's levels.
func ListGradeLevelsHandler(c *gin.Context) {
	var levels []models.GradeLevel
	query := config.DB.Order("level")
	if c.Query("schoolId") != "" {
		schoolID, err := parseQueryUint(c, "schoolId")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schoolId query parameter"})
			return
		}
		resourceID, ok := resourceSchoolID(c, schoolID)
		if !ok {
			return
		}
		query = query.Where("school_id = ?", resourceID)
	}
	if err := query.Find(&levels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch grade levels"})
		return
	}
	c.JSON(http.StatusOK, levels)
}

func CreateGradeLevelHandler(c *gin.Context) {
	var input GradeLevelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var school models.School
	if !firstOr404(c, &school, input.SchoolID, "School") {
		return
	}
	if school.IsCampus() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Grade levels belong to the parent school, not a campus"})
		return
	}

	level := models.GradeLevel{SchoolID: input.SchoolID, Level: input.Level, Name: input.Name}
	if err := config.DB.Create(&level).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create grade level"})
		return
	}
	c.JSON(http.StatusCreated, level)
}

func UpdateGradeLevelHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var level models.GradeLevel
	if !firstOr404(c, &level, id, "Grade level") {
		return
	}

	var input GradeLevelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	level.Level = input.Level
	level.Name = input.Name
	if err := config.DB.Save(&level).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update grade level"})
		return
	}
	invalidateCache(gradeStatsCacheKey(level.ID))
	c.JSON(http.StatusOK, level)
}

func DeleteGradeLevelHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var sections int64
	config.DB.Model(&models.Section{}).Where("grade_level_id = ?", id).Count(&sections)
	if sections > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Grade level still has sections"})
		return
	}

	if err := config.DB.Delete(&models.GradeLevel{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete grade level"})
		return
	}
	invalidateCache(gradeStatsCacheKey(id))
	c.JSON(http.StatusOK, gin.H{"message": "Grade level deleted"})
}

// --- Stats ---

// SectionStat is the per-section slice of a grade level's statistics.
type SectionStat struct {
	SectionID    uint   `json:"sectionId"`
	Name         string `json:"name"`
	StudentCount int64  `json:"studentCount"`
}

// GradeLevelStats aggregates a grade level with its sections and student
// counts, the former get_grade_with_stats call.
type GradeLevelStats struct {
	GradeLevel   models.GradeLevel `json:"gradeLevel"`
	SectionCount int               `json:"sectionCount"`
	StudentCount int64             `json:"studentCount"`
	Sections     []SectionStat     `json:"sections"`
}

const gradeStatsTTL = 5 * time.Minute

func gradeStatsCacheKey(gradeLevelID uint) string {
	return fmt.Sprintf("grade_level:%d:stats", gradeLevelID)
}

// GetGradeLevelStatsHandler computes section and student counts for one
// grade level. Results are cached in Redis and invalidated by section and
// student writes.
func GetGradeLevelStatsHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	cacheKey := gradeStatsCacheKey(id)
	if config.RDB != nil {
		if cached, err := config.RDB.Get(config.Ctx, cacheKey).Result(); err == nil {
			var stats GradeLevelStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				c.JSON(http.StatusOK, stats)
				return
			}
			slog.Warn("Failed to unmarshal cached grade stats", "grade_level_id", id)
		}
	}

	var level models.GradeLevel
	if !firstOr404(c, &level, id, "Grade level") {
		return
	}

	var sections []models.Section
	if err := config.DB.Where("grade_level_id = ?", id).Order("name").Find(&sections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sections"})
		return
	}

	stats := GradeLevelStats{GradeLevel: level, SectionCount: len(sections)}
	for _, section := range sections {
		var count int64
		config.DB.Model(&models.Student{}).
			Where("section_id = ? AND COALESCE(is_enrolled, TRUE)", section.ID).
			Count(&count)
		stats.Sections = append(stats.Sections, SectionStat{
			SectionID:    section.ID,
			Name:         section.Name,
			StudentCount: count,
		})
		stats.StudentCount += count
	}

	if config.RDB != nil {
		if data, err := json.Marshal(stats); err == nil {
			config.RDB.Set(config.Ctx, cacheKey, data, gradeStatsTTL)
		}
	}

	c.JSON(http.StatusOK, stats)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"

	"meridian-sms/config"
	"meridian-sms/models"
)

type TimetableEntryInput struct {
	SectionID uint   `json:"sectionId" binding:"required"`
	SubjectID uint   `json:"subjectId" binding:"required"`
	Teacher   string `json:"teacher" binding:"required"`
	DayOfWeek int    `json:"dayOfWeek" binding:"required,min=1,max=7"`
	Slot      int    `json:"slot" binding:"required,min=1"`
}

// slotConflictReason reports why the slot is taken, or "" when it is
// free. An entry with no teacher assigned (drafts from the auto-scheduler)
// only conflicts on the section; two unassigned entries never block each
// other on the teacher.
func slotConflictReason(occupants []models.TimetableEntry, input TimetableEntryInput, excludeID uint) string {
	for _, e := range occupants {
		if e.ID == excludeID {
			continue
		}
		if e.SectionID == input.SectionID {
			return "Section already has a lesson in this slot"
		}
		if input.Teacher != "" && e.Teacher == input.Teacher {
			return "Teacher already has a lesson in this slot"
		}
	}
	return ""
}

// slotConflict checks the slot against the confirmed entries already
// occupying it. Draft entries do not count until they are confirmed.
func slotConflict(input TimetableEntryInput, excludeID uint) (bool, string, error) {
	var occupants []models.TimetableEntry
	err := config.DB.
		Where("day_of_week = ? AND slot = ? AND status = ?",
			input.DayOfWeek, input.Slot, models.TimetableConfirmed).
		Find(&occupants).Error
	if err != nil {
		return false, "", err
	}
	if reason := slotConflictReason(occupants, input, excludeID); reason != "" {
		return true, reason, nil
	}
	return false, "", nil
}

func ListTimetableHandler(c *gin.Context) {
	var entries []models.TimetableEntry
	query := config.DB.Preload("Subject")
	if sectionID := c.Query("sectionId"); sectionID != "" {
		query = query.Where("section_id = ?", sectionID)
	}
	if teacher := c.Query("teacher"); teacher != "" {
		query = query.Where("teacher = ?", teacher)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("day_of_week, slot").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch timetable"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func CreateTimetableEntryHandler(c *gin.Context) {
	var input TimetableEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conflict, reason, err := slotConflict(input, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slot availability"})
		return
	}
	if conflict {
		c.JSON(http.StatusConflict, gin.H{"error": reason})
		return
	}

	entry := models.TimetableEntry{
		SectionID: input.SectionID,
		SubjectID: input.SubjectID,
		Teacher:   input.Teacher,
		DayOfWeek: input.DayOfWeek,
		Slot:      input.Slot,
		Status:    models.TimetableConfirmed,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create timetable entry"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func UpdateTimetableEntryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var entry models.TimetableEntry
	if !firstOr404(c, &entry, id, "Timetable entry") {
		return
	}

	var input TimetableEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conflict, reason, err := slotConflict(input, entry.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slot availability"})
		return
	}
	if conflict {
		c.JSON(http.StatusConflict, gin.H{"error": reason})
		return
	}

	entry.SectionID = input.SectionID
	entry.SubjectID = input.SubjectID
	entry.Teacher = input.Teacher
	entry.DayOfWeek = input.DayOfWeek
	entry.Slot = input.Slot
	if err := config.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update timetable entry"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ConfirmTimetableEntryHandler promotes a draft entry, re-running the
// conflict checks it skipped while in draft.
func ConfirmTimetableEntryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var entry models.TimetableEntry
	if !firstOr404(c, &entry, id, "Timetable entry") {
		return
	}
	if entry.Status == models.TimetableConfirmed {
		c.JSON(http.StatusOK, entry)
		return
	}

	input := TimetableEntryInput{
		SectionID: entry.SectionID,
		SubjectID: entry.SubjectID,
		Teacher:   entry.Teacher,
		DayOfWeek: entry.DayOfWeek,
		Slot:      entry.Slot,
	}
	conflict, reason, err := slotConflict(input, entry.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slot availability"})
		return
	}
	if conflict {
		c.JSON(http.StatusConflict, gin.H{"error": reason})
		return
	}

	entry.Status = models.TimetableConfirmed
	if err := config.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm timetable entry"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func DeleteTimetableEntryHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.TimetableEntry{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete timetable entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Timetable entry deleted"})
}

// extractJSON pulls the first complete JSON object out of a model reply,
// stripping markdown fences and surrounding prose.
func extractJSON(raw string) string {
	if start := strings.Index(raw, "```json"); start != -1 {
		raw = raw[start+7:]
		if end := strings.Index(raw, "```"); end != -1 {
			raw = raw[:end]
		}
	} else if start := strings.Index(raw, "```"); start != -1 {
		raw = raw[start+3:]
		if end := strings.Index(raw, "```"); end != -1 {
			raw = raw[:end]
		}
	}

	start := strings.Index(raw, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(raw, "}")
	if end == -1 || end < start {
		return ""
	}

	candidate := raw[start : end+1]
	if json.Valid([]byte(candidate)) {
		return candidate
	}
	slog.Warn("Model reply contained a malformed JSON object", "snippet", candidate)
	return ""
}

func buildTimetablePrompt(section models.Section, subjects []models.Subject, slotsPerDay int) string {
	var names []string
	for _, s := range subjects {
		names = append(names, s.Name)
	}
	return fmt.Sprintf(`You are a school timetable planner. Build a weekly timetable for section %q.
Subjects to place: %s.
Days are Monday through Friday, with %d lesson slots per day.
Spread subjects evenly and avoid placing the same subject twice on one day.
Respond with ONLY a JSON object of this shape, no extra text:
{"entries": [{"day_of_week": 1, "slot": 1, "subject_name": "Mathematics"}]}
day_of_week is 1 (Monday) through 5 (Friday), slot is 1 through %d.`,
		section.Name, strings.Join(names, ", "), slotsPerDay, slotsPerDay)
}

// GenerateTimetableDraftHandler asks the Gemini model for a weekly grid
// and stores the result as draft entries for review. Existing drafts for
// the section are replaced.
func GenerateTimetableDraftHandler(c *gin.Context) {
	if config.GeminiClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Timetable generation is not configured"})
		return
	}

	sectionID, err := parseQueryUint(c, "sectionId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sectionId query parameter is required"})
		return
	}
	slotsPerDay := 6
	if v, err := parseQueryUint(c, "slotsPerDay"); err == nil && v > 0 && v <= 12 {
		slotsPerDay = int(v)
	}

	var section models.Section
	if err := config.DB.Preload("GradeLevel").First(&section, sectionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
		return
	}
	if section.GradeLevel == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Section has no grade level"})
		return
	}
	var subjects []models.Subject
	if err := config.DB.Where("school_id = ?", section.GradeLevel.SchoolID).Order("name").Find(&subjects).Error; err != nil || len(subjects) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No subjects available for this school"})
		return
	}
	subjectByName := make(map[string]uint, len(subjects))
	for _, s := range subjects {
		subjectByName[strings.ToLower(s.Name)] = s.ID
	}

	prompt := buildTimetablePrompt(section, subjects, slotsPerDay)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	iter := config.GeminiClient.GenerateContentStream(ctx, genai.Text(prompt))
	var fullResponse strings.Builder
	for {
		resp, err := iter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "no more items in iterator") {
				break
			}
			slog.Error("Timetable generation stream failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate timetable"})
			return
		}
		if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			for _, part := range resp.Candidates[0].Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					fullResponse.WriteString(string(txt))
				}
			}
		}
	}

	cleanJSON := extractJSON(fullResponse.String())
	if cleanJSON == "" {
		slog.Error("Model returned no usable JSON for timetable", "response", fullResponse.String())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Model returned unusable data, try again"})
		return
	}

	var draft struct {
		Entries []struct {
			DayOfWeek   int    `json:"day_of_week"`
			Slot        int    `json:"slot"`
			SubjectName string `json:"subject_name"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(cleanJSON), &draft); err != nil {
		slog.Error("Failed to parse timetable JSON", "json", cleanJSON, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse the generated timetable"})
		return
	}
	if len(draft.Entries) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Model generated an empty timetable, try again"})
		return
	}

	tx := config.DB.Begin()
	if err := tx.Where("section_id = ? AND status = ?", section.ID, models.TimetableDraft).
		Delete(&models.TimetableEntry{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear previous draft"})
		return
	}

	var entries []models.TimetableEntry
	skipped := 0
	for _, item := range draft.Entries {
		subjectID, ok := subjectByName[strings.ToLower(strings.TrimSpace(item.SubjectName))]
		if !ok || item.DayOfWeek < 1 || item.DayOfWeek > 7 || item.Slot < 1 || item.Slot > slotsPerDay {
			skipped++
			continue
		}
		entries = append(entries, models.TimetableEntry{
			SectionID: section.ID,
			SubjectID: subjectID,
			Teacher:   "",
			DayOfWeek: item.DayOfWeek,
			Slot:      item.Slot,
			Status:    models.TimetableDraft,
		})
	}
	if len(entries) == 0 {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Generated timetable did not match any known subjects"})
		return
	}
	if err := tx.Create(&entries).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store timetable draft"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}

	slog.Info("Timetable draft generated", "section_id", section.ID, "entries", len(entries), "skipped", skipped)
	c.JSON(http.StatusCreated, gin.H{
		"sectionId": section.ID,
		"created":   len(entries),
		"skipped":   skipped,
		"entries":   entries,
	})
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Lesson plan statuses.
const (
	LessonPlanDraft     = "draft"
	LessonPlanPublished = "published"
)

// LessonPlan is a teacher's plan for one lesson. Content holds the rich
// text as stored by the editor.
type LessonPlan struct {
	gorm.Model
	SchoolID  uint      `json:"schoolId" gorm:"not null;index"`
	SectionID uint      `json:"sectionId" gorm:"not null;index"`
	SubjectID uint      `json:"subjectId" gorm:"not null;index"`
	Teacher   string    `json:"teacher" gorm:"not null"`
	Date      time.Time `json:"date" gorm:"not null"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text"`
	Status    string    `json:"status" gorm:"default:'draft'"`
	Section   *Section  `json:"section,omitempty" gorm:"foreignKey:SectionID"`
	Subject   *Subject  `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

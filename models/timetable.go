package models

import "gorm.io/gorm"

// Timetable entry statuses. Draft entries come from the auto-scheduler
// and are invisible to conflict checks until confirmed.
const (
	TimetableConfirmed = "confirmed"
	TimetableDraft     = "draft"
)

// TimetableEntry places one subject with one teacher into a weekly slot
// for a section. DayOfWeek is 1 (Monday) through 7.
type TimetableEntry struct {
	gorm.Model
	SectionID uint     `json:"sectionId" gorm:"not null;index"`
	SubjectID uint     `json:"subjectId" gorm:"not null"`
	Teacher   string   `json:"teacher" gorm:"not null"`
	DayOfWeek int      `json:"dayOfWeek" gorm:"not null"`
	Slot      int      `json:"slot" gorm:"not null"`
	Status    string   `json:"status" gorm:"default:'confirmed'"`
	Section   *Section `json:"section,omitempty" gorm:"foreignKey:SectionID"`
	Subject   *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// GradingPeriod is one marking term within an academic year (quarter,
// semester).
type GradingPeriod struct {
	gorm.Model
	AcademicYearID uint      `json:"academicYearId" gorm:"not null;index"`
	Name           string    `json:"name" gorm:"not null"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// GradeEntry is one recorded score. One entry exists per student, subject
// and grading period; repeated submissions update it in place.
type GradeEntry struct {
	gorm.Model
	StudentID       uint     `json:"studentId" gorm:"not null;uniqueIndex:idx_grade_entry"`
	SubjectID       uint     `json:"subjectId" gorm:"not null;uniqueIndex:idx_grade_entry"`
	GradingPeriodID uint     `json:"gradingPeriodId" gorm:"not null;uniqueIndex:idx_grade_entry"`
	SectionID       uint     `json:"sectionId" gorm:"not null;index"`
	Score           float64  `json:"score" gorm:"not null"`
	MaxScore        float64  `json:"maxScore" gorm:"default:100"`
	Remark          string   `json:"remark"`
	Student         *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Subject         *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// AcademicYear represents one school year, e.g. "2025-2026".
// Exactly one year per school is marked current.
type AcademicYear struct {
	gorm.Model
	SchoolID  uint      `json:"schoolId" gorm:"not null;index;uniqueIndex:idx_year_school_name"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_year_school_name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsCurrent bool      `json:"isCurrent" gorm:"default:false"`
}

package models

import "gorm.io/gorm"

// GradeLevel represents a grade (parallel) within a school, e.g. level 9.
type GradeLevel struct {
	gorm.Model
	SchoolID uint   `json:"schoolId" gorm:"not null;index;uniqueIndex:idx_grade_school_level"`
	Level    int    `json:"level" gorm:"not null;uniqueIndex:idx_grade_school_level"`
	Name     string `json:"name" gorm:"not null"` // e.g. "Ninth grade"
}

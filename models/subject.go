package models

import "gorm.io/gorm"

// Subject represents a taught subject.
type Subject struct {
	gorm.Model
	SchoolID uint   `json:"schoolId" gorm:"not null;index;uniqueIndex:idx_subject_school_name"`
	Name     string `json:"name" gorm:"not null;uniqueIndex:idx_subject_school_name"`
}

package models

import "gorm.io/gorm"

// FeeOverride replaces the fee structure amount for one student, category
// and academic year. Overrides always win over structures.
type FeeOverride struct {
	gorm.Model
	SchoolID       uint    `json:"schoolId" gorm:"not null;index"`
	StudentID      uint    `json:"studentId" gorm:"not null;uniqueIndex:idx_fee_override"`
	FeeCategoryID  uint    `json:"feeCategoryId" gorm:"not null;uniqueIndex:idx_fee_override"`
	AcademicYearID uint    `json:"academicYearId" gorm:"not null;uniqueIndex:idx_fee_override"`
	Amount         float64 `json:"amount" gorm:"type:numeric(12,2);not null"`
	Reason         string  `json:"reason"`
}

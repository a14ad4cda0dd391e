package models

import "gorm.io/gorm"

// Recurrence values for fee categories.
const (
	RecurrenceMonthly = "monthly"
	RecurrenceAnnual  = "annual"
	RecurrenceOneTime = "one_time"
)

// FeeCategory represents a kind of charge (tuition, transport, meals).
type FeeCategory struct {
	gorm.Model
	SchoolID   uint   `json:"schoolId" gorm:"not null;index;uniqueIndex:idx_fee_cat_school_name"`
	Name       string `json:"name" gorm:"not null;uniqueIndex:idx_fee_cat_school_name"`
	Recurrence string `json:"recurrence" gorm:"not null;default:'monthly'"`
}

package models

import "gorm.io/gorm"

// SiblingDiscountTier grants a percentage discount keyed by the number of
// enrolled siblings a student has. The highest qualifying tier wins, and
// only students ranked second or later by family order receive it.
type SiblingDiscountTier struct {
	gorm.Model
	SchoolID    uint    `json:"schoolId" gorm:"not null;index;uniqueIndex:idx_sibling_tier"`
	MinSiblings int     `json:"minSiblings" gorm:"not null;uniqueIndex:idx_sibling_tier"`
	Percent     float64 `json:"percent" gorm:"not null"`
}

package models

import "gorm.io/gorm"

// FeeAdjustment is a signed correction applied to a student fee.
// Negative amounts reduce the balance (waivers, goodwill credits),
// positive amounts add surcharges.
type FeeAdjustment struct {
	gorm.Model
	StudentFeeID uint    `json:"studentFeeId" gorm:"not null;index"`
	Amount       float64 `json:"amount" gorm:"type:numeric(12,2);not null"`
	Reason       string  `json:"reason" gorm:"not null"`
	AppliedBy    string  `json:"appliedBy"`
}

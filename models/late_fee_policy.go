package models

import "gorm.io/gorm"

// LateFeePolicy configures how overdue balances are penalized.
// FlatFee and Percent are cumulative; the same flat amount doubles as the
// library fine for overdue loans.
type LateFeePolicy struct {
	gorm.Model
	SchoolID  uint    `json:"schoolId" gorm:"not null;unique"`
	GraceDays int     `json:"graceDays" gorm:"default:0"`
	FlatFee   float64 `json:"flatFee" gorm:"type:numeric(12,2);default:0"`
	Percent   float64 `json:"percent" gorm:"default:0"`
}

package models

import "gorm.io/gorm"

// FeeStructure is the standard amount charged for one grade level and fee
// category in one academic year. A campus has no structures of its own:
// lookups resolve against the parent school.
type FeeStructure struct {
	gorm.Model
	SchoolID       uint         `json:"schoolId" gorm:"not null;index;uniqueIndex:idx_fee_struct"`
	AcademicYearID uint         `json:"academicYearId" gorm:"not null;uniqueIndex:idx_fee_struct"`
	GradeLevelID   uint         `json:"gradeLevelId" gorm:"not null;uniqueIndex:idx_fee_struct"`
	FeeCategoryID  uint         `json:"feeCategoryId" gorm:"not null;uniqueIndex:idx_fee_struct"`
	Amount         float64      `json:"amount" gorm:"type:numeric(12,2);not null"`
	FeeCategory    *FeeCategory `json:"feeCategory,omitempty" gorm:"foreignKey:FeeCategoryID"`
	GradeLevel     *GradeLevel  `json:"gradeLevel,omitempty" gorm:"foreignKey:GradeLevelID"`
}

// PaymentPlan groups the installment formulas a student fee can be split
// into, e.g. "Four tranches".
type PaymentPlan struct {
	gorm.Model
	SchoolID     uint              `json:"schoolId" gorm:"not null;index"`
	Name         string            `json:"name" gorm:"not null"`
	Installments []PlanInstallment `json:"installments" gorm:"foreignKey:PaymentPlanID"`
}

// PlanInstallment is one tranche of a payment plan. Formula is evaluated
// with the parameters Amount, Discount and NetAmount, e.g. "NetAmount * 0.25".
type PlanInstallment struct {
	gorm.Model
	PaymentPlanID uint   `json:"paymentPlanId" gorm:"not null;index"`
	Month         string `json:"month" gorm:"not null"` // English month name
	Day           int    `json:"day" gorm:"not null"`
	Formula       string `json:"formula" gorm:"not null"`
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Student fee statuses.
const (
	FeeStatusPending = "pending"
	FeeStatusPartial = "partial"
	FeeStatusPaid    = "paid"
	FeeStatusOverdue = "overdue"
	FeeStatusWaived  = "waived"
)

// Breakdown sources and line kinds.
const (
	FeeSourceStructure = "structure"
	FeeSourceOverride  = "override"

	BreakdownLineDiscount   = "discount"
	BreakdownLineAdjustment = "adjustment"
	BreakdownLineLateFee    = "late_fee"
	BreakdownLinePayment    = "payment"
)

// BreakdownLine is one event recorded against a student fee.
type BreakdownLine struct {
	Kind   string    `json:"kind"`
	Label  string    `json:"label"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// FeeBreakdown is the audit trail of how a student fee got its numbers.
// It is stored as a single JSONB column.
type FeeBreakdown struct {
	BaseAmount  float64         `json:"baseAmount"`
	Source      string          `json:"source"`
	TierPercent float64         `json:"tierPercent,omitempty"`
	Siblings    int             `json:"siblings,omitempty"`
	Lines       []BreakdownLine `json:"lines,omitempty"`
}

// Value serializes the breakdown to JSON for storage.
func (b FeeBreakdown) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan reads the JSONB column back into the struct.
func (b *FeeBreakdown) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, b)
}

// StudentFee is one charge for a student in one billing period.
// Period is "YYYY-MM" for monthly categories and the academic year name
// for annual and one-time ones.
type StudentFee struct {
	gorm.Model
	SchoolID        uint         `json:"schoolId" gorm:"not null;index"`
	StudentID       uint         `json:"studentId" gorm:"not null;uniqueIndex:idx_student_fee"`
	FeeCategoryID   uint         `json:"feeCategoryId" gorm:"not null;uniqueIndex:idx_student_fee"`
	AcademicYearID  uint         `json:"academicYearId" gorm:"not null;uniqueIndex:idx_student_fee"`
	Period          string       `json:"period" gorm:"not null;uniqueIndex:idx_student_fee"`
	Amount          float64      `json:"amount" gorm:"type:numeric(12,2);not null"`
	DiscountAmount  float64      `json:"discountAmount" gorm:"type:numeric(12,2);default:0"`
	AdjustmentTotal float64      `json:"adjustmentTotal" gorm:"type:numeric(12,2);default:0"`
	LateFeeTotal    float64      `json:"lateFeeTotal" gorm:"type:numeric(12,2);default:0"`
	PaidAmount      float64      `json:"paidAmount" gorm:"type:numeric(12,2);default:0"`
	DueDate         time.Time    `json:"dueDate"`
	Status          string       `json:"status" gorm:"default:'pending'"`
	Breakdown       FeeBreakdown `json:"breakdown" gorm:"type:jsonb"`
	Student         *Student     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	FeeCategory     *FeeCategory `json:"feeCategory,omitempty" gorm:"foreignKey:FeeCategoryID"`
}

// Balance is the amount still owed.
func (f *StudentFee) Balance() float64 {
	return f.Amount - f.DiscountAmount + f.AdjustmentTotal + f.LateFeeTotal - f.PaidAmount
}

// FeeInstallment is one tranche of a generated payment schedule for a
// student fee.
type FeeInstallment struct {
	gorm.Model
	StudentFeeID uint      `json:"studentFeeId" gorm:"not null;index"`
	Label        string    `json:"label"`
	DueDate      time.Time `json:"dueDate"`
	Amount       float64   `json:"amount" gorm:"type:numeric(12,2)"`
	Status       string    `json:"status" gorm:"default:'pending'"`
}

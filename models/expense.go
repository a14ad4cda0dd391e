package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense is one outgoing payment to a payee.
type Expense struct {
	gorm.Model
	SchoolID    uint      `json:"schoolId" gorm:"not null;index"`
	PayeeID     uint      `json:"payeeId" gorm:"not null;index"`
	Payee       *Payee    `json:"payee,omitempty" gorm:"foreignKey:PayeeID"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount" gorm:"type:numeric(12,2);not null"`
	ExpenseDate time.Time `json:"expenseDate" gorm:"not null"`
	Memo        string    `json:"memo"`
}

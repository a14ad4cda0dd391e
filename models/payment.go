package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment records money received against a student fee. ExternalID holds
// the bank transaction reference for webhook-ingested payments and guards
// against duplicates on resync.
type Payment struct {
	gorm.Model
	StudentFeeID  uint        `json:"studentFeeId" gorm:"not null;index"`
	StudentFee    *StudentFee `json:"studentFee,omitempty" gorm:"foreignKey:StudentFeeID"`
	Amount        float64     `json:"amount" gorm:"type:numeric(12,2);not null"`
	Method        string      `json:"method"`
	PaymentDate   time.Time   `json:"paymentDate" gorm:"not null"`
	ReceiptNumber string      `json:"receiptNumber" gorm:"uniqueIndex"`
	ExternalID    *string     `json:"externalId" gorm:"uniqueIndex"`
	Comment       string      `json:"comment"`
}

package models

import "gorm.io/gorm"

// Payee is a counterparty the school pays (suppliers, utilities).
// Deactivation is used instead of hard deletes so expense history keeps
// its references.
type Payee struct {
	gorm.Model
	SchoolID    uint   `json:"schoolId" gorm:"not null;index"`
	Name        string `json:"name" gorm:"not null"`
	TaxID       string `json:"taxId" gorm:"index"`
	BankName    string `json:"bankName"`
	BankAccount string `json:"bankAccount"`
	IsActive    *bool  `json:"isActive" gorm:"default:true"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Loan statuses.
const (
	LoanStatusActive   = "active"
	LoanStatusReturned = "returned"
	LoanStatusOverdue  = "overdue"
)

// Book is one library title with a copy count.
type Book struct {
	gorm.Model
	SchoolID        uint   `json:"schoolId" gorm:"not null;index"`
	Title           string `json:"title" gorm:"not null"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn" gorm:"index"`
	TotalCopies     int    `json:"totalCopies" gorm:"default:1"`
	AvailableCopies int    `json:"availableCopies" gorm:"default:1"`
}

// BookLoan tracks one borrowed copy. FineAmount is set by the overdue
// sweep from the school's late fee policy.
type BookLoan struct {
	gorm.Model
	BookID     uint       `json:"bookId" gorm:"not null;index"`
	Book       *Book      `json:"book,omitempty" gorm:"foreignKey:BookID"`
	StudentID  uint       `json:"studentId" gorm:"not null;index"`
	Student    *Student   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	LoanDate   time.Time  `json:"loanDate" gorm:"not null"`
	DueDate    time.Time  `json:"dueDate" gorm:"not null"`
	ReturnedAt *time.Time `json:"returnedAt"`
	Status     string     `json:"status" gorm:"default:'active'"`
	FineAmount float64    `json:"fineAmount" gorm:"type:numeric(12,2);default:0"`
}

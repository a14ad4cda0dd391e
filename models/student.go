package models

import (
	"time"

	"gorm.io/gorm"
)

// FamilyLink connects two students who are siblings. The transitive
// closure of links forms the family used for sibling discounts.
type FamilyLink struct {
	gorm.Model
	StudentID        uint    `json:"studentId" gorm:"not null;index"`
	RelativeID       uint    `json:"relativeId" gorm:"not null;index"`
	RelationshipType string  `json:"relationshipType"`
	Relative         Student `json:"relative,omitempty" gorm:"foreignKey:RelativeID"`
}

// Student represents one enrolled (or formerly enrolled) student.
type Student struct {
	gorm.Model
	SchoolID      uint       `json:"schoolId" gorm:"not null;index"`
	GradeLevelID  *uint      `json:"gradeLevelId"`
	SectionID     *uint      `json:"sectionId"`
	LastName      string     `json:"lastName" gorm:"not null"`
	FirstName     string     `json:"firstName" gorm:"not null"`
	MiddleName    string     `json:"middleName"`
	Gender        string     `json:"gender"`
	BirthDate     *time.Time `json:"birthDate"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	GuardianName  string     `json:"guardianName"`
	GuardianPhone string     `json:"guardianPhone"`
	IsEnrolled    *bool      `json:"isEnrolled" gorm:"default:true"`

	// FamilyOrder ranks the student among siblings; the oldest enrolled
	// child carries the lowest value. Unlinked students keep the default.
	FamilyOrder int `json:"familyOrder" gorm:"default:999"`

	FamilyLinks []FamilyLink `json:"familyLinks,omitempty" gorm:"foreignKey:StudentID"`
	GradeLevel  *GradeLevel  `json:"gradeLevel,omitempty" gorm:"foreignKey:GradeLevelID"`
	Section     *Section     `json:"section,omitempty" gorm:"foreignKey:SectionID"`
}

// FullName returns "Last First" as displayed in registers and receipts.
func (s *Student) FullName() string {
	return s.LastName + " " + s.FirstName
}

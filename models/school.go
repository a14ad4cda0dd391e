package models

import "gorm.io/gorm"

// School represents either a standalone school or a campus. A campus is a
// child record with ParentSchoolID set; campuses share the parent's
// school-wide resources (academic years, fee structures).
type School struct {
	gorm.Model
	Name           string  `json:"name" gorm:"not null"`
	Code           string  `json:"code" gorm:"unique;not null"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone"`
	IsActive       *bool   `json:"isActive" gorm:"default:true"`
	ParentSchoolID *uint   `json:"parentSchoolId"`
	ParentSchool   *School `json:"parentSchool,omitempty" gorm:"foreignKey:ParentSchoolID"`
}

// IsCampus reports whether the record is a child campus.
func (s *School) IsCampus() bool { return s.ParentSchoolID != nil }

// ResourceSchoolID returns the school that owns school-wide resources:
// the parent for a campus, the school itself otherwise.
func (s *School) ResourceSchoolID() uint {
	if s.ParentSchoolID != nil {
		return *s.ParentSchoolID
	}
	return s.ID
}

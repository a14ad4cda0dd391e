package models

import "gorm.io/gorm"

// Section represents one class group within a grade level, e.g. "9-A".
type Section struct {
	gorm.Model
	GradeLevelID    uint        `json:"gradeLevelId" gorm:"not null;index;uniqueIndex:idx_section_grade_name"`
	GradeLevel      *GradeLevel `json:"gradeLevel,omitempty" gorm:"foreignKey:GradeLevelID"`
	Name            string      `json:"name" gorm:"not null;uniqueIndex:idx_section_grade_name"`
	HomeroomTeacher string      `json:"homeroomTeacher"`
}

// SectionInput binds JSON payloads for create and update requests.
type SectionInput struct {
	GradeLevelID    uint   `json:"gradeLevelId" binding:"required"`
	Name            string `json:"name" binding:"required"`
	HomeroomTeacher string `json:"homeroomTeacher"`
}

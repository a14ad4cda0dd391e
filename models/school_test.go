package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestSchoolResourceSchoolID(t *testing.T) {
	parentID := uint(1)

	parent := School{Model: gorm.Model{ID: parentID}}
	assert.False(t, parent.IsCampus())
	assert.Equal(t, parentID, parent.ResourceSchoolID())

	campus := School{Model: gorm.Model{ID: 2}, ParentSchoolID: &parentID}
	assert.True(t, campus.IsCampus())
	// school-wide resources (years, grade levels, fee config) live on
	// the parent
	assert.Equal(t, parentID, campus.ResourceSchoolID())
}

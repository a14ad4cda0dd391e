package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meridian-sms/config"
	"meridian-sms/models"
)

// --- Sibling discount tiers ---

type SiblingTierInput struct {
	SchoolID    uint    `json:"schoolId" binding:"required"`
	MinSiblings int     `json:"minSiblings" binding:"required,min=1"`
	Percent     float64 `json:"percent" binding:"required,gt=0,lte=100"`
}

func ListSiblingTiersHandler(c *gin.Context) {
	schoolID, err := parseQueryUint(c, "schoolId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schoolId query parameter is required"})
		return
	}
	resourceID, ok := resourceSchoolID(c, schoolID)
	if !ok {
		return
	}

	var tiers []models.SiblingDiscountTier
	if err := config.DB.Where("school_id = ?", resourceID).Order("min_siblings").Find(&tiers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch discount tiers"})
		return
	}
	c.JSON(http.StatusOK, tiers)
}

func CreateSiblingTierHandler(c *gin.Context) {
	var input SiblingTierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var school models.School
	if !firstOr404(c, &school, input.SchoolID, "School") {
		return
	}
	if school.IsCampus() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount tiers belong to the parent school, not a campus"})
		return
	}

	tier := models.SiblingDiscountTier{
		SchoolID:    input.SchoolID,
		MinSiblings: input.MinSiblings,
		Percent:     input.Percent,
	}
	if err := config.DB.Create(&tier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create discount tier"})
		return
	}
	c.JSON(http.StatusCreated, tier)
}

func UpdateSiblingTierHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var tier models.SiblingDiscountTier
	if !firstOr404(c, &tier, id, "Discount tier") {
		return
	}

	var input SiblingTierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tier.MinSiblings = input.MinSiblings
	tier.Percent = input.Percent
	if err := config.DB.Save(&tier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update discount tier"})
		return
	}
	c.JSON(http.StatusOK, tier)
}

func DeleteSiblingTierHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.SiblingDiscountTier{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete discount tier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Discount tier deleted"})
}

// --- Late fee policy ---

type LateFeePolicyInput struct {
	SchoolID  uint    `json:"schoolId" binding:"required"`
	GraceDays int     `json:"graceDays" binding:"gte=0"`
	FlatFee   float64 `json:"flatFee" binding:"gte=0"`
	Percent   float64 `json:"percent" binding:"gte=0,lte=100"`
}

func GetLateFeePolicyHandler(c *gin.Context) {
	schoolID, err := parseQueryUint(c, "schoolId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schoolId query parameter is required"})
		return
	}
	resourceID, ok := resourceSchoolID(c, schoolID)
	if !ok {
		return
	}

	var policy models.LateFeePolicy
	if err := config.DB.Where("school_id = ?", resourceID).First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No late fee policy configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch late fee policy"})
		return
	}
	c.JSON(http.StatusOK, policy)
}

// UpsertLateFeePolicyHandler creates or replaces the school's policy.
func UpsertLateFeePolicyHandler(c *gin.Context) {
	var input LateFeePolicyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var school models.School
	if !firstOr404(c, &school, input.SchoolID, "School") {
		return
	}
	if school.IsCampus() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The late fee policy belongs to the parent school, not a campus"})
		return
	}

	var policy models.LateFeePolicy
	err := config.DB.Where("school_id = ?", input.SchoolID).First(&policy).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load late fee policy"})
		return
	}

	policy.SchoolID = input.SchoolID
	policy.GraceDays = input.GraceDays
	policy.FlatFee = input.FlatFee
	policy.Percent = input.Percent
	if err := config.DB.Save(&policy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save late fee policy"})
		return
	}
	c.JSON(http.StatusOK, policy)
}

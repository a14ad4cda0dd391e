package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/models"
)

type PayeeInput struct {
	SchoolID    uint   `json:"schoolId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	TaxID       string `json:"taxId"`
	BankName    string `json:"bankName"`
	BankAccount string `json:"bankAccount"`
}

func ListPayeesHandler(c *gin.Context) {
	var payees []models.Payee
	var totalRows int64

	query := config.DB.Model(&models.Payee{})
	if schoolID := c.Query("schoolId"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if c.Query("activeOnly") == "true" {
		query = query.Where("COALESCE(is_active, TRUE)")
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR tax_id LIKE ?", pattern, pattern)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count payees"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("name").Find(&payees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payees"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, payees, totalRows))
}

func CreatePayeeHandler(c *gin.Context) {
	var input PayeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payee := models.Payee{
		SchoolID:    input.SchoolID,
		Name:        input.Name,
		TaxID:       input.TaxID,
		BankName:    input.BankName,
		BankAccount: input.BankAccount,
	}
	if err := config.DB.Create(&payee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payee"})
		return
	}
	c.JSON(http.StatusCreated, payee)
}

func GetPayeeHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payee models.Payee
	if !firstOr404(c, &payee, id, "Payee") {
		return
	}
	c.JSON(http.StatusOK, payee)
}

func UpdatePayeeHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payee models.Payee
	if !firstOr404(c, &payee, id, "Payee") {
		return
	}

	var input PayeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payee.Name = input.Name
	payee.TaxID = input.TaxID
	payee.BankName = input.BankName
	payee.BankAccount = input.BankAccount
	if err := config.DB.Save(&payee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payee"})
		return
	}
	c.JSON(http.StatusOK, payee)
}

// DeactivatePayeeHandler soft-disables a payee; expense history keeps its
// references.
func DeactivatePayeeHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inactive := false
	if err := config.DB.Model(&models.Payee{}).Where("id = ?", id).
		Update("is_active", &inactive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate payee"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payee deactivated"})
}

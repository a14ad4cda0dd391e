package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/internal/fees"
	"meridian-sms/models"
)

type PaymentInput struct {
	StudentFeeID uint      `json:"studentFeeId" binding:"required"`
	Amount       float64   `json:"amount" binding:"required,gt=0"`
	Method       string    `json:"method" binding:"required"`
	PaymentDate  time.Time `json:"paymentDate"`
	Comment      string    `json:"comment"`
}

func paymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fees.ErrFeeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, fees.ErrOverpayment), errors.Is(err, fees.ErrInvalidAmount), errors.Is(err, fees.ErrFeeClosed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		slog.Error("Payment failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
	}
}

// CreatePaymentHandler records a cashier-entered payment and returns the
// receipt.
func CreatePaymentHandler(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.PaymentDate.IsZero() {
		input.PaymentDate = time.Now()
	}

	service := fees.NewService(config.DB)
	payment, err := service.RecordPayment(input.StudentFeeID, input.Amount, input.Method, input.PaymentDate, nil, input.Comment)
	if err != nil {
		paymentError(c, err)
		return
	}

	invalidateFeeSummaryForFee(payment.StudentFeeID)
	c.JSON(http.StatusCreated, gin.H{
		"payment":       payment,
		"amountInWords": amountInWords(payment.Amount),
	})
}

// invalidateFeeSummaryForFee drops the cached summary of the student a
// fee belongs to.
func invalidateFeeSummaryForFee(feeID uint) {
	if config.RDB == nil {
		return
	}
	var fee models.StudentFee
	if err := config.DB.Select("student_id").First(&fee, feeID).Error; err != nil {
		return
	}
	invalidateCache(feeSummaryCacheKey(fee.StudentID))
}

func ListPaymentsHandler(c *gin.Context) {
	var payments []models.Payment
	var totalRows int64

	query := config.DB.Model(&models.Payment{}).Preload("StudentFee")
	if feeID := c.Query("studentFeeId"); feeID != "" {
		query = query.Where("student_fee_id = ?", feeID)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count payments"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("payment_date desc").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, payments, totalRows))
}

// GetReceiptHandler returns the printable receipt data for one payment.
func GetReceiptHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payment models.Payment
	if err := config.DB.Preload("StudentFee.Student").Preload("StudentFee.FeeCategory").
		First(&payment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	receipt := gin.H{
		"receiptNumber": payment.ReceiptNumber,
		"paymentDate":   payment.PaymentDate.Format("2006-01-02"),
		"amount":        payment.Amount,
		"amountInWords": amountInWords(payment.Amount),
		"method":        payment.Method,
	}
	if payment.StudentFee != nil {
		if payment.StudentFee.Student != nil {
			receipt["studentName"] = payment.StudentFee.Student.FullName()
		}
		if payment.StudentFee.FeeCategory != nil {
			receipt["category"] = payment.StudentFee.FeeCategory.Name
		}
		receipt["period"] = payment.StudentFee.Period
	}
	c.JSON(http.StatusOK, receipt)
}

// amountInWords spells out a money amount for receipts, whole units in
// words plus cents as digits.
func amountInWords(amount float64) string {
	whole := int(amount)
	cents := int(math.Round((amount - float64(whole)) * 100))
	return fmt.Sprintf("%s and %02d/100", num2words.Convert(whole), cents)
}

// --- Bank webhook ---

type bankPaymentPayload struct {
	ExternalID   string  `json:"externalId" binding:"required"`
	StudentFeeID uint    `json:"studentFeeId" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	PaidAt       string  `json:"paidAt"`
}

// BankPaymentWebhookHandler ingests payments pushed by the bank gateway.
// Replayed notifications with a known external ID are acknowledged
// without creating a duplicate.
func BankPaymentWebhookHandler(c *gin.Context) {
	var payload bankPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paidAt := time.Now()
	if payload.PaidAt != "" {
		if t, err := time.Parse("2006-01-02", payload.PaidAt); err == nil {
			paidAt = t
		}
	}

	service := fees.NewService(config.DB)
	payment, err := service.RecordPayment(payload.StudentFeeID, payload.Amount, "bank", paidAt, &payload.ExternalID, "bank webhook")
	if err != nil {
		paymentError(c, err)
		return
	}
	invalidateFeeSummaryForFee(payment.StudentFeeID)
	c.JSON(http.StatusOK, gin.H{"message": "Payment recorded", "receiptNumber": payment.ReceiptNumber})
}

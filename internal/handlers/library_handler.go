package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meridian-sms/config"
	"meridian-sms/models"
)

// --- Books ---

type BookInput struct {
	SchoolID    uint   `json:"schoolId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	TotalCopies int    `json:"totalCopies" binding:"required,min=1"`
}

func ListBooksHandler(c *gin.Context) {
	var books []models.Book
	var totalRows int64

	query := config.DB.Model(&models.Book{})
	if schoolID := c.Query("schoolId"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR isbn LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count books"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("title").Find(&books).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, books, totalRows))
}

func CreateBookHandler(c *gin.Context) {
	var input BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	book := models.Book{
		SchoolID:        input.SchoolID,
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
	}
	if err := config.DB.Create(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create book"})
		return
	}
	c.JSON(http.StatusCreated, book)
}

func UpdateBookHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var book models.Book
	if !firstOr404(c, &book, id, "Book") {
		return
	}

	var input BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// keep the outstanding loan count intact when resizing the stock
	onLoan := book.TotalCopies - book.AvailableCopies
	if input.TotalCopies < onLoan {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot reduce copies below the number on loan"})
		return
	}
	book.Title = input.Title
	book.Author = input.Author
	book.ISBN = input.ISBN
	book.TotalCopies = input.TotalCopies
	book.AvailableCopies = input.TotalCopies - onLoan

	if err := config.DB.Save(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update book"})
		return
	}
	c.JSON(http.StatusOK, book)
}

func DeleteBookHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var active int64
	config.DB.Model(&models.BookLoan{}).
		Where("book_id = ? AND status <> ?", id, models.LoanStatusReturned).Count(&active)
	if active > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Book still has active loans"})
		return
	}

	if err := config.DB.Delete(&models.Book{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete book"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
}

// --- Loans ---

type LoanInput struct {
	BookID    uint   `json:"bookId" binding:"required"`
	StudentID uint   `json:"studentId" binding:"required"`
	DueDate   string `json:"dueDate" binding:"required"` // YYYY-MM-DD
}

// BorrowBookHandler checks a copy out: decrements availability and opens
// the loan in one transaction.
func BorrowBookHandler(c *gin.Context) {
	var input LoanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dueDate, err := time.Parse("2006-01-02", input.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dueDate must look like 2006-01-02"})
		return
	}

	var student models.Student
	if !firstOr404(c, &student, input.StudentID, "Student") {
		return
	}

	tx := config.DB.Begin()
	var book models.Book
	if err := tx.First(&book, input.BookID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}
	if book.AvailableCopies <= 0 {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "No copies available"})
		return
	}

	if err := tx.Model(&book).Update("available_copies", book.AvailableCopies-1).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update book availability"})
		return
	}

	loan := models.BookLoan{
		BookID:    input.BookID,
		StudentID: input.StudentID,
		LoanDate:  time.Now(),
		DueDate:   dueDate,
		Status:    models.LoanStatusActive,
	}
	if err := tx.Create(&loan).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create loan"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// ReturnBookHandler closes a loan and returns the copy to the shelf.
func ReturnBookHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx := config.DB.Begin()
	var loan models.BookLoan
	if err := tx.First(&loan, id).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		return
	}
	if loan.Status == models.LoanStatusReturned {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "Loan is already returned"})
		return
	}

	now := time.Now()
	loan.ReturnedAt = &now
	loan.Status = models.LoanStatusReturned
	if err := tx.Save(&loan).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close loan"})
		return
	}
	if err := tx.Model(&models.Book{}).Where("id = ?", loan.BookID).
		Update("available_copies", gorm.Expr("available_copies + 1")).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update book availability"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}
	c.JSON(http.StatusOK, loan)
}

func ListLoansHandler(c *gin.Context) {
	var loans []models.BookLoan
	var totalRows int64

	query := config.DB.Model(&models.BookLoan{}).Preload("Book").Preload("Student")
	if studentID := c.Query("studentId"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if bookID := c.Query("bookId"); bookID != "" {
		query = query.Where("book_id = ?", bookID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count loans"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("loan_date desc").Find(&loans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch loans"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, loans, totalRows))
}

// DownloadLoanRegisterHandler exports all loans as a CSV file.
func DownloadLoanRegisterHandler(c *gin.Context) {
	var loans []models.BookLoan
	if err := config.DB.Preload("Book").Preload("Student").
		Order("loan_date desc").Find(&loans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch loans"})
		return
	}
	if len(loans) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No loans found to export"})
		return
	}

	b := &bytes.Buffer{}
	b.Write([]byte{0xEF, 0xBB, 0xBF}) // BOM for UTF-8

	w := csv.NewWriter(b)
	w.Comma = ';'

	headers := []string{"ID", "Book", "Student", "Loan date", "Due date", "Returned", "Status", "Fine"}
	if err := w.Write(headers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV header"})
		return
	}

	for _, loan := range loans {
		bookTitle := ""
		if loan.Book != nil {
			bookTitle = loan.Book.Title
		}
		studentName := ""
		if loan.Student != nil {
			studentName = loan.Student.FullName()
		}
		returned := ""
		if loan.ReturnedAt != nil {
			returned = loan.ReturnedAt.Format("2006-01-02")
		}
		record := []string{
			strconv.Itoa(int(loan.ID)),
			bookTitle,
			studentName,
			loan.LoanDate.Format("2006-01-02"),
			loan.DueDate.Format("2006-01-02"),
			returned,
			loan.Status,
			fmt.Sprintf("%.2f", loan.FineAmount),
		}
		if err := w.Write(record); err != nil {
			continue
		}
	}
	w.Flush()

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=loan_register.csv")
	c.Data(http.StatusOK, "text/csv", b.Bytes())
}

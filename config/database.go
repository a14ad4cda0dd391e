package config

import (
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"meridian-sms/models"
)

var DB *gorm.DB

// ConnectDB opens the Postgres connection and runs schema migration.
// The service cannot do anything useful without a database, so any
// failure here is fatal.
func ConnectDB(dsn string) {
	if dsn == "" {
		slog.Error("DB_URL environment variable is not set")
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		slog.Error("Failed to connect to the database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.School{},
		&models.AcademicYear{},
		&models.GradeLevel{},
		&models.Section{},
		&models.Subject{},
		&models.Student{},
		&models.FamilyLink{},
		&models.FeeCategory{},
		&models.FeeStructure{},
		&models.PaymentPlan{},
		&models.PlanInstallment{},
		&models.FeeOverride{},
		&models.SiblingDiscountTier{},
		&models.LateFeePolicy{},
		&models.StudentFee{},
		&models.FeeInstallment{},
		&models.FeeAdjustment{},
		&models.Payment{},
		&models.Payee{},
		&models.Expense{},
		&models.GradingPeriod{},
		&models.GradeEntry{},
		&models.LessonPlan{},
		&models.Book{},
		&models.BookLoan{},
		&models.TimetableEntry{},
	); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("Connected to the database")
}

package fees

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meridian-sms/models"
)

var (
	ErrFeeNotFound    = errors.New("student fee not found")
	ErrNoFeeStructure = errors.New("no fee structure configured for this student")
	ErrOverpayment    = errors.New("payment exceeds the outstanding balance")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrFeeClosed      = errors.New("fee is paid or waived")
)

// Service runs the fee computation and adjustment workflow: assessing
// charges, generating the monthly batch, applying late fees, adjustments
// and payments.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// FindFullFamily walks family links in both directions and returns the
// IDs of every student connected to the given one, including itself.
func FindFullFamily(db *gorm.DB, studentID uint) ([]uint, error) {
	visited := map[uint]bool{studentID: true}
	queue := []uint{studentID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var links []models.FamilyLink
		if err := db.Where("student_id = ? OR relative_id = ?", current, current).Find(&links).Error; err != nil {
			return nil, err
		}
		for _, link := range links {
			for _, id := range []uint{link.StudentID, link.RelativeID} {
				if !visited[id] {
					visited[id] = true
					queue = append(queue, id)
				}
			}
		}
	}

	ids := make([]uint, 0, len(visited))
	for id := range visited {
		ids = append(ids, id)
	}
	return ids, nil
}

// enrolledFamily loads the enrolled members of the student's family,
// including the student when enrolled.
func (s *Service) enrolledFamily(studentID uint) ([]models.Student, error) {
	ids, err := FindFullFamily(s.db, studentID)
	if err != nil {
		return nil, err
	}
	var family []models.Student
	if err := s.db.Where("id IN ? AND COALESCE(is_enrolled, TRUE)", ids).Find(&family).Error; err != nil {
		return nil, err
	}
	return family, nil
}

// resourceSchoolID resolves the school that owns fee configuration:
// the parent for a campus, the school itself otherwise.
func (s *Service) resourceSchoolID(schoolID uint) (uint, error) {
	var school models.School
	if err := s.db.First(&school, schoolID).Error; err != nil {
		return 0, err
	}
	return school.ResourceSchoolID(), nil
}

// resolveBase finds the charged amount for a student/category/year: an
// override when present, the fee structure row otherwise.
func (s *Service) resolveBase(student *models.Student, resourceSchoolID, categoryID, yearID uint) (amount float64, source string, err error) {
	var override models.FeeOverride
	err = s.db.Where("student_id = ? AND fee_category_id = ? AND academic_year_id = ?",
		student.ID, categoryID, yearID).First(&override).Error
	if err == nil {
		return override.Amount, models.FeeSourceOverride, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, "", err
	}

	if student.GradeLevelID == nil {
		return 0, "", ErrNoFeeStructure
	}
	var structure models.FeeStructure
	err = s.db.Where("school_id = ? AND academic_year_id = ? AND grade_level_id = ? AND fee_category_id = ?",
		resourceSchoolID, yearID, *student.GradeLevelID, categoryID).First(&structure).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, "", ErrNoFeeStructure
	}
	if err != nil {
		return 0, "", err
	}
	return structure.Amount, models.FeeSourceStructure, nil
}

// Assess computes and stores one student fee for the given category, year
// and billing period. Repeated calls for the same tuple return the
// existing row unchanged.
func (s *Service) Assess(studentID, categoryID, yearID uint, period string, dueDate time.Time) (*models.StudentFee, error) {
	var existing models.StudentFee
	err := s.db.Where("student_id = ? AND fee_category_id = ? AND academic_year_id = ? AND period = ?",
		studentID, categoryID, yearID, period).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var student models.Student
	if err := s.db.First(&student, studentID).Error; err != nil {
		return nil, err
	}
	resourceID, err := s.resourceSchoolID(student.SchoolID)
	if err != nil {
		return nil, err
	}

	base, source, err := s.resolveBase(&student, resourceID, categoryID, yearID)
	if err != nil {
		return nil, err
	}

	family, err := s.enrolledFamily(studentID)
	if err != nil {
		return nil, err
	}
	siblings := len(family) - 1
	rank := FamilyRank(family, studentID)

	var tiers []models.SiblingDiscountTier
	if err := s.db.Where("school_id = ?", resourceID).Find(&tiers).Error; err != nil {
		return nil, err
	}
	discount, percent := SiblingDiscount(base, rank, siblings, tiers)

	fee := models.StudentFee{
		SchoolID:       student.SchoolID,
		StudentID:      studentID,
		FeeCategoryID:  categoryID,
		AcademicYearID: yearID,
		Period:         period,
		Amount:         base,
		DiscountAmount: discount,
		DueDate:        dueDate,
		Status:         models.FeeStatusPending,
		Breakdown: models.FeeBreakdown{
			BaseAmount:  base,
			Source:      source,
			TierPercent: percent,
			Siblings:    siblings,
		},
	}
	if discount > 0 {
		fee.Breakdown.Lines = append(fee.Breakdown.Lines, models.BreakdownLine{
			Kind:   models.BreakdownLineDiscount,
			Label:  fmt.Sprintf("Sibling discount %.0f%%", percent),
			Amount: -discount,
			Date:   time.Now().UTC(),
		})
	}

	if err := s.db.Create(&fee).Error; err != nil {
		return nil, err
	}
	return &fee, nil
}

// SchoolGeneration summarizes the monthly batch for one school. Unpriced
// counts charges that could not be created because neither an override
// nor a structure row prices them.
type SchoolGeneration struct {
	SchoolID   uint   `json:"schoolId"`
	SchoolName string `json:"schoolName"`
	Created    int    `json:"created"`
	Skipped    int    `json:"skipped"`
	Unpriced   int    `json:"unpriced"`
}

// GenerateMonthly creates the month's student fees across every active
// school. For each enrolled student and each monthly category with a
// structure row for the student's grade level in the current academic
// year, one StudentFee is created unless it already exists. Each school
// runs in its own transaction.
func (s *Service) GenerateMonthly(month time.Time) ([]SchoolGeneration, error) {
	period := MonthPeriod(month)
	dueDate := time.Date(month.Year(), month.Month(), 10, 0, 0, 0, 0, time.UTC)

	var schools []models.School
	if err := s.db.Where("COALESCE(is_active, TRUE)").Find(&schools).Error; err != nil {
		return nil, err
	}

	results := make([]SchoolGeneration, 0, len(schools))
	for _, school := range schools {
		result, err := s.generateForSchool(&school, period, dueDate)
		if err != nil {
			slog.Error("Monthly fee generation failed for school", "school_id", school.ID, "error", err)
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *Service) generateForSchool(school *models.School, period string, dueDate time.Time) (*SchoolGeneration, error) {
	resourceID := school.ResourceSchoolID()

	var year models.AcademicYear
	err := s.db.Where("school_id = ? AND is_current", resourceID).First(&year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Warn("School has no current academic year, skipping generation", "school_id", school.ID)
		return &SchoolGeneration{SchoolID: school.ID, SchoolName: school.Name}, nil
	}
	if err != nil {
		return nil, err
	}

	var categories []models.FeeCategory
	if err := s.db.Where("school_id = ? AND recurrence = ?", resourceID, models.RecurrenceMonthly).Find(&categories).Error; err != nil {
		return nil, err
	}

	var structures []models.FeeStructure
	if err := s.db.Where("school_id = ? AND academic_year_id = ?", resourceID, year.ID).Find(&structures).Error; err != nil {
		return nil, err
	}
	var overrides []models.FeeOverride
	if err := s.db.Where("academic_year_id = ?", year.ID).Find(&overrides).Error; err != nil {
		return nil, err
	}
	pricing := NewBatchPricing(overrides, structures)

	var tiers []models.SiblingDiscountTier
	if err := s.db.Where("school_id = ?", resourceID).Find(&tiers).Error; err != nil {
		return nil, err
	}

	var students []models.Student
	if err := s.db.Where("school_id = ? AND COALESCE(is_enrolled, TRUE)", school.ID).Find(&students).Error; err != nil {
		return nil, err
	}

	result := &SchoolGeneration{SchoolID: school.ID, SchoolName: school.Name}
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	for i := range students {
		student := &students[i]

		var family []models.Student
		familyLoaded := false

		for _, category := range categories {
			var count int64
			if err := tx.Model(&models.StudentFee{}).
				Where("student_id = ? AND fee_category_id = ? AND academic_year_id = ? AND period = ?",
					student.ID, category.ID, year.ID, period).
				Count(&count).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			if count > 0 {
				result.Skipped++
				continue
			}

			base, source, err := pricing.BaseFor(student.ID, student.GradeLevelID, category.ID)
			if errors.Is(err, ErrNoFeeStructure) {
				result.Unpriced++
				continue
			}

			if !familyLoaded {
				if family, err = s.enrolledFamily(student.ID); err != nil {
					tx.Rollback()
					return nil, err
				}
				familyLoaded = true
			}
			discount, percent := SiblingDiscount(base, FamilyRank(family, student.ID), len(family)-1, tiers)

			fee := models.StudentFee{
				SchoolID:       school.ID,
				StudentID:      student.ID,
				FeeCategoryID:  category.ID,
				AcademicYearID: year.ID,
				Period:         period,
				Amount:         base,
				DiscountAmount: discount,
				DueDate:        dueDate,
				Status:         models.FeeStatusPending,
				Breakdown: models.FeeBreakdown{
					BaseAmount:  base,
					Source:      source,
					TierPercent: percent,
					Siblings:    len(family) - 1,
				},
			}
			if discount > 0 {
				fee.Breakdown.Lines = append(fee.Breakdown.Lines, models.BreakdownLine{
					Kind:   models.BreakdownLineDiscount,
					Label:  fmt.Sprintf("Sibling discount %.0f%%", percent),
					Amount: -discount,
					Date:   time.Now().UTC(),
				})
			}
			if err := tx.Create(&fee).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			result.Created++
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	if result.Unpriced > 0 {
		slog.Warn("Some charges had no override or structure row",
			"school_id", school.ID, "period", period, "unpriced", result.Unpriced)
	}
	return result, nil
}

// ApplyLateFees penalizes fees whose due date plus the school's grace
// period has passed. A fee is charged once: the sweep only touches fees
// that are not yet overdue. Returns the number of fees penalized.
func (s *Service) ApplyLateFees(now time.Time) (int, error) {
	var policies []models.LateFeePolicy
	if err := s.db.Find(&policies).Error; err != nil {
		return 0, err
	}
	policyFor := make(map[uint]models.LateFeePolicy, len(policies))
	for _, p := range policies {
		policyFor[p.SchoolID] = p
	}

	var schools []models.School
	if err := s.db.Find(&schools).Error; err != nil {
		return 0, err
	}
	resourceFor := make(map[uint]uint, len(schools))
	for _, sc := range schools {
		resourceFor[sc.ID] = sc.ResourceSchoolID()
	}

	var candidates []models.StudentFee
	if err := s.db.Where("status IN ? AND due_date < ?",
		[]string{models.FeeStatusPending, models.FeeStatusPartial}, now).Find(&candidates).Error; err != nil {
		return 0, err
	}

	applied := 0
	for i := range candidates {
		fee := &candidates[i]
		policy, ok := policyFor[resourceFor[fee.SchoolID]]
		if !ok {
			continue
		}
		deadline := fee.DueDate.AddDate(0, 0, policy.GraceDays)
		if !now.After(deadline) {
			continue
		}

		penalty := LateFee(policy, fee.Balance())
		if penalty <= 0 {
			continue
		}
		fee.LateFeeTotal = Round2(fee.LateFeeTotal + penalty)
		fee.Status = models.FeeStatusOverdue
		fee.Breakdown.Lines = append(fee.Breakdown.Lines, models.BreakdownLine{
			Kind:   models.BreakdownLineLateFee,
			Label:  "Late fee",
			Amount: penalty,
			Date:   now.UTC(),
		})
		if err := s.db.Save(fee).Error; err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// ApplyAdjustment records a signed correction against a student fee and
// updates its totals, breakdown and status in one transaction.
func (s *Service) ApplyAdjustment(feeID uint, amount float64, reason, appliedBy string) (*models.StudentFee, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var fee models.StudentFee
	if err := tx.First(&fee, feeID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeeNotFound
		}
		return nil, err
	}

	adjustment := models.FeeAdjustment{
		StudentFeeID: fee.ID,
		Amount:       amount,
		Reason:       reason,
		AppliedBy:    appliedBy,
	}
	if err := tx.Create(&adjustment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	fee.AdjustmentTotal = Round2(fee.AdjustmentTotal + amount)
	fee.Breakdown.Lines = append(fee.Breakdown.Lines, models.BreakdownLine{
		Kind:   models.BreakdownLineAdjustment,
		Label:  reason,
		Amount: amount,
		Date:   time.Now().UTC(),
	})
	RecomputeStatus(&fee)

	if err := tx.Save(&fee).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &fee, nil
}

// RecordPayment applies money to a student fee: creates the payment with
// a receipt number, bumps the paid amount and recomputes the status, all
// in one transaction. Overpayments are rejected. When externalID matches
// a previously ingested payment the existing row is returned unchanged.
func (s *Service) RecordPayment(feeID uint, amount float64, method string, date time.Time, externalID *string, comment string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if externalID != nil && *externalID != "" {
		var existing models.Payment
		err := s.db.Where("external_id = ?", *externalID).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var fee models.StudentFee
	if err := tx.First(&fee, feeID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeeNotFound
		}
		return nil, err
	}
	if fee.Status == models.FeeStatusPaid || fee.Status == models.FeeStatusWaived {
		tx.Rollback()
		return nil, ErrFeeClosed
	}
	if amount > fee.Balance() {
		tx.Rollback()
		return nil, ErrOverpayment
	}

	payment := models.Payment{
		StudentFeeID:  fee.ID,
		Amount:        amount,
		Method:        method,
		PaymentDate:   date,
		ReceiptNumber: uuid.New().String(),
		ExternalID:    externalID,
		Comment:       comment,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	fee.PaidAmount = Round2(fee.PaidAmount + amount)
	fee.Breakdown.Lines = append(fee.Breakdown.Lines, models.BreakdownLine{
		Kind:   models.BreakdownLinePayment,
		Label:  "Payment " + payment.ReceiptNumber,
		Amount: -amount,
		Date:   date.UTC(),
	})
	RecomputeStatus(&fee)

	if err := tx.Save(&fee).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

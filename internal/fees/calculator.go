package fees

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Knetic/govaluate"

	"meridian-sms/models"
)

// Round2 rounds a money amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MonthPeriod formats a billing period key for monthly categories.
func MonthPeriod(t time.Time) string {
	return t.Format("2006-01")
}

// ResolveTier returns the highest discount tier whose MinSiblings the
// given sibling count satisfies, or nil when none qualifies.
func ResolveTier(tiers []models.SiblingDiscountTier, siblings int) *models.SiblingDiscountTier {
	var best *models.SiblingDiscountTier
	for i := range tiers {
		t := &tiers[i]
		if siblings < t.MinSiblings {
			continue
		}
		if best == nil || t.MinSiblings > best.MinSiblings {
			best = t
		}
	}
	return best
}

// SiblingDiscount computes the discount for a student given their rank
// within the family (1 = oldest by family order) and the number of
// enrolled siblings. The first child never receives a discount.
func SiblingDiscount(base float64, familyRank, siblings int, tiers []models.SiblingDiscountTier) (amount, percent float64) {
	if familyRank <= 1 || siblings < 1 {
		return 0, 0
	}
	tier := ResolveTier(tiers, siblings)
	if tier == nil {
		return 0, 0
	}
	return Round2(base * tier.Percent / 100), tier.Percent
}

// FamilyRank orders the enrolled family members by FamilyOrder (ID breaks
// ties) and returns the 1-based position of the given student. Students
// outside the slice get rank 1.
func FamilyRank(family []models.Student, studentID uint) int {
	sorted := make([]models.Student, len(family))
	copy(sorted, family)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FamilyOrder != sorted[j].FamilyOrder {
			return sorted[i].FamilyOrder < sorted[j].FamilyOrder
		}
		return sorted[i].ID < sorted[j].ID
	})
	for i, m := range sorted {
		if m.ID == studentID {
			return i + 1
		}
	}
	return 1
}

// BatchPricing holds the amounts preloaded for one school's generation
// run. Overrides are keyed by (student, category), structures by
// (grade level, category).
type BatchPricing struct {
	Overrides  map[[2]uint]float64
	Structures map[[2]uint]float64
}

// NewBatchPricing indexes the school's override and structure rows.
func NewBatchPricing(overrides []models.FeeOverride, structures []models.FeeStructure) BatchPricing {
	p := BatchPricing{
		Overrides:  make(map[[2]uint]float64, len(overrides)),
		Structures: make(map[[2]uint]float64, len(structures)),
	}
	for _, o := range overrides {
		p.Overrides[[2]uint{o.StudentID, o.FeeCategoryID}] = o.Amount
	}
	for _, st := range structures {
		p.Structures[[2]uint{st.GradeLevelID, st.FeeCategoryID}] = st.Amount
	}
	return p
}

// BaseFor resolves the charged amount for one student and category: the
// override when present, the grade level's structure row otherwise.
// ErrNoFeeStructure when neither prices the charge.
func (p BatchPricing) BaseFor(studentID uint, gradeLevelID *uint, categoryID uint) (float64, string, error) {
	if amount, ok := p.Overrides[[2]uint{studentID, categoryID}]; ok {
		return amount, models.FeeSourceOverride, nil
	}
	if gradeLevelID == nil {
		return 0, "", ErrNoFeeStructure
	}
	if amount, ok := p.Structures[[2]uint{*gradeLevelID, categoryID}]; ok {
		return amount, models.FeeSourceStructure, nil
	}
	return 0, "", ErrNoFeeStructure
}

// LateFee computes the penalty a policy adds to an outstanding balance.
func LateFee(policy models.LateFeePolicy, balance float64) float64 {
	if balance <= 0 {
		return 0
	}
	return Round2(policy.FlatFee + balance*policy.Percent/100)
}

// RecomputeStatus derives the fee status from its totals. Waived fees are
// left untouched. Overdue is only entered by the late-fee sweep and only
// left by settling the balance in full, so a partial payment cannot arm a
// second late fee.
func RecomputeStatus(fee *models.StudentFee) {
	if fee.Status == models.FeeStatusWaived {
		return
	}
	switch {
	case fee.Balance() <= 0:
		fee.Status = models.FeeStatusPaid
	case fee.Status == models.FeeStatusOverdue:
		// stays overdue until fully settled
	case fee.PaidAmount > 0:
		fee.Status = models.FeeStatusPartial
	default:
		fee.Status = models.FeeStatusPending
	}
}

// EvaluateInstallment computes one payment plan tranche. The formula sees
// the parameters Amount (gross), Discount and NetAmount.
func EvaluateInstallment(formula string, amount, discount float64) (float64, error) {
	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return 0, fmt.Errorf("invalid installment formula %q: %w", formula, err)
	}

	parameters := map[string]interface{}{
		"Amount":    amount,
		"Discount":  discount,
		"NetAmount": amount - discount,
	}
	result, err := expr.Evaluate(parameters)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate formula %q: %w", formula, err)
	}
	value, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("formula %q did not produce a number", formula)
	}
	return Round2(value), nil
}

var monthIndex = map[string]int{
	"January": 0, "February": 1, "March": 2, "April": 3, "May": 4, "June": 5,
	"July": 6, "August": 7, "September": 8, "October": 9, "November": 10, "December": 11,
}

// InstallmentDate places a plan installment inside the academic year that
// starts in yearStart. Months before June belong to the following calendar
// year, so an autumn-start year keeps its spring tranches in spring.
func InstallmentDate(yearStart time.Time, month string, day int) time.Time {
	idx, ok := monthIndex[month]
	if !ok {
		idx = 0
	}
	m := time.Month(idx + 1)
	year := yearStart.Year()
	if m < time.June {
		year++
	}
	return time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
}

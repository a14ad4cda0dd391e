package fees

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"meridian-sms/models"
)

func tier(min int, percent float64) models.SiblingDiscountTier {
	return models.SiblingDiscountTier{MinSiblings: min, Percent: percent}
}

func TestResolveTier(t *testing.T) {
	tiers := []models.SiblingDiscountTier{tier(1, 5), tier(2, 10), tier(4, 15)}

	tests := []struct {
		name        string
		siblings    int
		wantPercent float64
		wantNil     bool
	}{
		{name: "no siblings", siblings: 0, wantNil: true},
		{name: "one sibling", siblings: 1, wantPercent: 5},
		{name: "two siblings", siblings: 2, wantPercent: 10},
		{name: "three siblings keep middle tier", siblings: 3, wantPercent: 10},
		{name: "large family hits top tier", siblings: 6, wantPercent: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTier(tiers, tt.siblings)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPercent, got.Percent)
		})
	}

	t.Run("empty tier table", func(t *testing.T) {
		assert.Nil(t, ResolveTier(nil, 5))
	})
}

func TestSiblingDiscount(t *testing.T) {
	tiers := []models.SiblingDiscountTier{tier(1, 5), tier(2, 10)}

	tests := []struct {
		name        string
		base        float64
		rank        int
		siblings    int
		wantAmount  float64
		wantPercent float64
	}{
		{name: "first child pays full", base: 1000, rank: 1, siblings: 2},
		{name: "second child gets tier", base: 1000, rank: 2, siblings: 1, wantAmount: 50, wantPercent: 5},
		{name: "third child bigger tier", base: 1000, rank: 3, siblings: 2, wantAmount: 100, wantPercent: 10},
		{name: "no siblings no discount", base: 1000, rank: 2, siblings: 0},
		{name: "rounding", base: 333.33, rank: 2, siblings: 1, wantAmount: 16.67, wantPercent: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, percent := SiblingDiscount(tt.base, tt.rank, tt.siblings, tiers)
			assert.Equal(t, tt.wantAmount, amount)
			assert.Equal(t, tt.wantPercent, percent)
		})
	}
}

func student(id uint, order int) models.Student {
	return models.Student{Model: gorm.Model{ID: id}, FamilyOrder: order}
}

func TestFamilyRank(t *testing.T) {
	family := []models.Student{student(10, 2), student(11, 1), student(12, 999), student(13, 999)}

	assert.Equal(t, 1, FamilyRank(family, 11))
	assert.Equal(t, 2, FamilyRank(family, 10))
	// default orders fall back to ID for a stable rank
	assert.Equal(t, 3, FamilyRank(family, 12))
	assert.Equal(t, 4, FamilyRank(family, 13))
	// unknown student is treated as the oldest
	assert.Equal(t, 1, FamilyRank(family, 99))
}

func TestBatchPricingBaseFor(t *testing.T) {
	gradeA, gradeB := uint(1), uint(2)
	pricing := NewBatchPricing(
		[]models.FeeOverride{
			{StudentID: 100, FeeCategoryID: 7, Amount: 750},
		},
		[]models.FeeStructure{
			{GradeLevelID: gradeA, FeeCategoryID: 7, Amount: 1000},
		},
	)

	t.Run("override wins over structure", func(t *testing.T) {
		amount, source, err := pricing.BaseFor(100, &gradeA, 7)
		require.NoError(t, err)
		assert.Equal(t, 750.0, amount)
		assert.Equal(t, models.FeeSourceOverride, source)
	})

	t.Run("structure prices the rest", func(t *testing.T) {
		amount, source, err := pricing.BaseFor(101, &gradeA, 7)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, amount)
		assert.Equal(t, models.FeeSourceStructure, source)
	})

	// a grade level the structure table does not know (e.g. a row owned
	// by another school) must surface as unpriced, not as a zero charge
	t.Run("unknown grade level", func(t *testing.T) {
		_, _, err := pricing.BaseFor(101, &gradeB, 7)
		assert.ErrorIs(t, err, ErrNoFeeStructure)
	})

	t.Run("override without a grade level", func(t *testing.T) {
		amount, source, err := pricing.BaseFor(100, nil, 7)
		require.NoError(t, err)
		assert.Equal(t, 750.0, amount)
		assert.Equal(t, models.FeeSourceOverride, source)
	})

	t.Run("no grade level and no override", func(t *testing.T) {
		_, _, err := pricing.BaseFor(101, nil, 7)
		assert.ErrorIs(t, err, ErrNoFeeStructure)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, _, err := pricing.BaseFor(101, &gradeA, 8)
		assert.ErrorIs(t, err, ErrNoFeeStructure)
	})
}

func TestLateFee(t *testing.T) {
	policy := models.LateFeePolicy{FlatFee: 25, Percent: 2}

	assert.Equal(t, 0.0, LateFee(policy, 0))
	assert.Equal(t, 0.0, LateFee(policy, -100))
	assert.Equal(t, 45.0, LateFee(policy, 1000))
	assert.Equal(t, 25.0, LateFee(models.LateFeePolicy{FlatFee: 25}, 500))
	assert.Equal(t, 10.0, LateFee(models.LateFeePolicy{Percent: 2}, 500))
}

func TestRecomputeStatus(t *testing.T) {
	tests := []struct {
		name string
		fee  models.StudentFee
		want string
	}{
		{
			name: "untouched fee stays pending",
			fee:  models.StudentFee{Amount: 1000, Status: models.FeeStatusPending},
			want: models.FeeStatusPending,
		},
		{
			name: "partial payment",
			fee:  models.StudentFee{Amount: 1000, PaidAmount: 400, Status: models.FeeStatusPending},
			want: models.FeeStatusPartial,
		},
		{
			name: "full payment",
			fee:  models.StudentFee{Amount: 1000, PaidAmount: 1000, Status: models.FeeStatusPartial},
			want: models.FeeStatusPaid,
		},
		{
			name: "discount can settle the fee",
			fee:  models.StudentFee{Amount: 1000, DiscountAmount: 1000, Status: models.FeeStatusPending},
			want: models.FeeStatusPaid,
		},
		{
			name: "partial payment does not clear overdue",
			fee:  models.StudentFee{Amount: 1000, LateFeeTotal: 25, PaidAmount: 500, Status: models.FeeStatusOverdue},
			want: models.FeeStatusOverdue,
		},
		{
			name: "settling the balance clears overdue",
			fee:  models.StudentFee{Amount: 1000, LateFeeTotal: 25, PaidAmount: 1025, Status: models.FeeStatusOverdue},
			want: models.FeeStatusPaid,
		},
		{
			name: "waived is terminal",
			fee:  models.StudentFee{Amount: 1000, PaidAmount: 1000, Status: models.FeeStatusWaived},
			want: models.FeeStatusWaived,
		},
		{
			name: "negative adjustment reduces the balance",
			fee:  models.StudentFee{Amount: 1000, AdjustmentTotal: -200, PaidAmount: 800, Status: models.FeeStatusPartial},
			want: models.FeeStatusPaid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := tt.fee
			RecomputeStatus(&fee)
			assert.Equal(t, tt.want, fee.Status)
		})
	}
}

func TestEvaluateInstallment(t *testing.T) {
	tests := []struct {
		name     string
		formula  string
		amount   float64
		discount float64
		want     float64
		wantErr  bool
	}{
		{name: "half of net", formula: "NetAmount / 2", amount: 1000, discount: 100, want: 450},
		{name: "gross percentage", formula: "Amount * 0.25", amount: 1000, want: 250},
		{name: "flat", formula: "150", want: 150},
		{name: "discount aware", formula: "(Amount - Discount) * 0.1", amount: 1200, discount: 200, want: 100},
		{name: "rounding", formula: "Amount / 3", amount: 100, want: 33.33},
		{name: "broken syntax", formula: "Amount *", wantErr: true},
		{name: "unknown name", formula: "Amount * Rate", amount: 100, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateInstallment(tt.formula, tt.amount, tt.discount)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstallmentDate(t *testing.T) {
	yearStart := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

	sept := InstallmentDate(yearStart, "September", 10)
	assert.Equal(t, time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC), sept)

	// spring months belong to the following calendar year
	feb := InstallmentDate(yearStart, "February", 5)
	assert.Equal(t, time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC), feb)

	may := InstallmentDate(yearStart, "May", 28)
	assert.Equal(t, 2026, may.Year())

	june := InstallmentDate(yearStart, "June", 1)
	assert.Equal(t, 2025, june.Year())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.556))
	assert.Equal(t, 10.55, Round2(10.554))
	assert.Equal(t, -10.56, Round2(-10.556))
	assert.Equal(t, 0.0, Round2(0))
}

func TestMonthPeriod(t *testing.T) {
	assert.Equal(t, "2026-03", MonthPeriod(time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)))
}

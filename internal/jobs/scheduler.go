package jobs

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"meridian-sms/config"
	"meridian-sms/internal/fees"
	"meridian-sms/models"
)

// Scheduler owns the recurring background jobs: the monthly fee batch,
// the daily late fee sweep and the daily library overdue sweep.
type Scheduler struct {
	cronEngine *cron.Cron
	db         *gorm.DB
	feeService *fees.Service

	monthlySpec string
	lateFeeSpec string
	overdueSpec string
}

func NewScheduler(db *gorm.DB, cfg config.App) *Scheduler {
	return &Scheduler{
		cronEngine:  cron.New(cron.WithLocation(time.Local)),
		db:          db,
		feeService:  fees.NewService(db),
		monthlySpec: cfg.MonthlyCron,
		lateFeeSpec: cfg.LateFeeCron,
		overdueSpec: cfg.OverdueCron,
	}
}

// Start registers the jobs and launches the cron engine. A bad cron spec
// is a configuration error and aborts startup.
func (s *Scheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.monthlySpec, s.runMonthlyGeneration); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.lateFeeSpec, s.runLateFeeSweep); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.overdueSpec, s.runOverdueLoanSweep); err != nil {
		return err
	}

	s.cronEngine.Start()
	slog.Info("Background scheduler started",
		"monthly_fees", s.monthlySpec,
		"late_fees", s.lateFeeSpec,
		"overdue_loans", s.overdueSpec)
	return nil
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cronEngine.Stop().Done()
	slog.Info("Background scheduler stopped")
}

func (s *Scheduler) runMonthlyGeneration() {
	month := time.Now()
	slog.Info("Monthly fee generation triggered", "period", fees.MonthPeriod(month))

	results, err := s.feeService.GenerateMonthly(month)
	if err != nil {
		slog.Error("Monthly fee generation failed", "error", err)
		return
	}
	for _, r := range results {
		slog.Info("Monthly fees generated",
			"school", r.SchoolName, "created", r.Created, "skipped", r.Skipped)
	}
}

func (s *Scheduler) runLateFeeSweep() {
	applied, err := s.feeService.ApplyLateFees(time.Now())
	if err != nil {
		slog.Error("Late fee sweep failed", "applied_before_error", applied, "error", err)
		return
	}
	slog.Info("Late fee sweep finished", "applied", applied)
}

// runOverdueLoanSweep marks active loans past their due date as overdue
// and stamps the fine from the school's late fee policy. The fine is set
// once; a loan already marked overdue is left alone.
func (s *Scheduler) runOverdueLoanSweep() {
	var policies []models.LateFeePolicy
	if err := s.db.Find(&policies).Error; err != nil {
		slog.Error("Overdue loan sweep failed to load policies", "error", err)
		return
	}
	policyFor := make(map[uint]models.LateFeePolicy, len(policies))
	for _, p := range policies {
		policyFor[p.SchoolID] = p
	}

	var schools []models.School
	if err := s.db.Find(&schools).Error; err != nil {
		slog.Error("Overdue loan sweep failed to load schools", "error", err)
		return
	}
	resourceFor := make(map[uint]uint, len(schools))
	for _, sc := range schools {
		resourceFor[sc.ID] = sc.ResourceSchoolID()
	}

	var loans []models.BookLoan
	if err := s.db.Preload("Book").
		Where("status = ? AND due_date < ?", models.LoanStatusActive, time.Now()).
		Find(&loans).Error; err != nil {
		slog.Error("Overdue loan sweep failed to load loans", "error", err)
		return
	}

	marked := 0
	for i := range loans {
		loan := &loans[i]
		loan.Status = models.LoanStatusOverdue
		if loan.Book != nil {
			if policy, ok := policyFor[resourceFor[loan.Book.SchoolID]]; ok {
				loan.FineAmount = policy.FlatFee
			}
		}
		if err := s.db.Save(loan).Error; err != nil {
			slog.Error("Failed to mark loan overdue", "loan_id", loan.ID, "error", err)
			continue
		}
		marked++
	}
	slog.Info("Overdue loan sweep finished", "marked", marked)
}

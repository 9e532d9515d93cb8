package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/jobs"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
	"github.com/motofin/motofin-api/internal/statemachine"
	"github.com/motofin/motofin-api/pkg/logger"
)

// LoanService drives the loan application lifecycle and the per-payment
// progress cascade.
type LoanService struct {
	db              *gorm.DB
	repos           *repository.Repositories
	scheduleSvc     *PaymentScheduleService
	riskSvc         *RiskService
	repossessionSvc *RepossessionService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

// NewLoanService creates a new loan service
func NewLoanService(
	db *gorm.DB,
	repos *repository.Repositories,
	riskSvc *RiskService,
	repossessionSvc *RepossessionService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *LoanService {
	return &LoanService{
		db:              db,
		repos:           repos,
		scheduleSvc:     NewPaymentScheduleService(),
		riskSvc:         riskSvc,
		repossessionSvc: repossessionSvc,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

// CreateLoanInput carries the intake form for a new application.
type CreateLoanInput struct {
	ApplicantFirstName string
	ApplicantLastName  string
	ApplicantEmail     string
	ApplicantPhone     string
	DateOfBirth        *time.Time
	EmploymentStatus   string
	EmployerName       string
	MonthlyIncome      decimal.Decimal
	MotorID            uint
	FinancingTermID    uint
	DownPayment        decimal.Decimal
	HasValidID         bool
	HasProofOfIncome   bool
	Notes              string
	SubmittedByID      uint
}

// Create validates the intake and persists a pending application. The loan
// amount comes from the motor's purchase price; the interest rate is
// captured from the financing term so later term edits never reprice the
// loan. No schedule exists until approval.
func (s *LoanService) Create(ctx context.Context, input *CreateLoanInput) (*models.LoanApplication, error) {
	var verrs ValidationErrors

	if input.ApplicantFirstName == "" {
		verrs = append(verrs, ValidationError{Field: "applicant_first_name", Message: "is required"})
	}
	if input.ApplicantLastName == "" {
		verrs = append(verrs, ValidationError{Field: "applicant_last_name", Message: "is required"})
	}
	if input.ApplicantEmail == "" {
		verrs = append(verrs, ValidationError{Field: "applicant_email", Message: "is required"})
	}
	if input.MonthlyIncome.IsNegative() {
		verrs = append(verrs, ValidationError{Field: "monthly_income", Message: "cannot be negative"})
	}
	if input.DownPayment.IsNegative() {
		verrs = append(verrs, ValidationError{Field: "down_payment", Message: "cannot be negative"})
	}

	motor, err := s.repos.Motor.FindByID(ctx, input.MotorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verrs = append(verrs, ValidationError{Field: "motor_id", Message: "motor not found"})
		} else {
			return nil, err
		}
	}

	term, err := s.repos.FinancingTerm.FindByID(ctx, input.FinancingTermID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verrs = append(verrs, ValidationError{Field: "financing_term_id", Message: "financing term not found"})
		} else {
			return nil, err
		}
	} else if !term.Active {
		verrs = append(verrs, ValidationError{Field: "financing_term_id", Message: "financing term is no longer offered"})
	}

	if len(verrs) > 0 {
		return nil, verrs
	}

	loanAmount := motor.PurchasePrice
	principal := loanAmount.Sub(input.DownPayment)
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, ValidationErrors{{Field: "down_payment", Message: "must leave a positive amount to finance"}}
	}

	employment := input.EmploymentStatus
	if employment == "" {
		employment = models.EmploymentEmployed
	}

	loan := &models.LoanApplication{
		ApplicantFirstName: input.ApplicantFirstName,
		ApplicantLastName:  input.ApplicantLastName,
		ApplicantEmail:     input.ApplicantEmail,
		ApplicantPhone:     input.ApplicantPhone,
		DateOfBirth:        input.DateOfBirth,
		EmploymentStatus:   employment,
		EmployerName:       input.EmployerName,
		MonthlyIncome:      input.MonthlyIncome,
		MotorID:            motor.ID,
		FinancingTermID:    term.ID,
		LoanAmount:         loanAmount,
		DownPayment:        input.DownPayment,
		PrincipalAmount:    principal,
		InterestRate:       term.InterestRate,
		HasValidID:         input.HasValidID,
		HasProofOfIncome:   input.HasProofOfIncome,
		Notes:              input.Notes,
		Status:             models.LoanStatusPending,
		SubmittedByID:      input.SubmittedByID,
		FinancingTerm:      *term,
	}
	loan.MonthlyPayment = loan.CalculateMonthlyPayment()

	if err := s.repos.Loan.Create(ctx, loan); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, input.SubmittedByID, models.AuditActionCreate, "LoanApplication", loan.ID,
		fmt.Sprintf("Application for %s, principal %s over %d months", motor.DisplayName(), principal.StringFixed(2), term.TotalMonths()), "", "")

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyRole(ctx, models.RoleManager,
			"New loan application",
			fmt.Sprintf("%s applied to finance a %s", loan.ApplicantFullName(), motor.DisplayName()),
			models.NotificationTypeLoanApproved)
	})

	return loan, nil
}

// Approve moves a pending loan to approved: it recomputes the monthly
// payment, generates the full amortization schedule and runs the first risk
// evaluation, all in one transaction.
func (s *LoanService) Approve(ctx context.Context, id uint, actorID uint) (*models.LoanApplication, error) {
	var loan *models.LoanApplication

	err := s.db.Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		var err error
		loan, err = r.Loan.FindByIDWithDetails(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		fsm := statemachine.NewLoanFSM(loan)
		if err := fsm.Approve(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}

		now := time.Now()
		loan.ApprovedAt = &now
		loan.MonthlyPayment = loan.CalculateMonthlyPayment()

		if err := r.Loan.Update(ctx, loan); err != nil {
			return err
		}

		schedules, err := s.scheduleSvc.BuildSchedule(loan, now)
		if err != nil {
			return err
		}
		if err := r.Schedule.ReplaceForLoan(ctx, loan.ID, schedules); err != nil {
			return err
		}
		loan.Schedules = schedules

		_, err = s.riskSvc.Evaluate(ctx, r, loan, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("loan approved", "loan_id", loan.ID, "monthly_payment", loan.MonthlyPayment, "installments", len(loan.Schedules))

	s.auditSvc.Log(ctx, actorID, models.AuditActionApprove, "LoanApplication", loan.ID,
		fmt.Sprintf("Approved with monthly payment %s", loan.MonthlyPayment.StringFixed(2)), "", "")

	approved := *loan
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailSvc.SendLoanApproved(ctx, &approved)
	})

	return loan, nil
}

// Activate releases the financed unit: one stock unit moves from available
// to sold under a row lock, and the loan starts accruing payment state.
// Insufficient stock fails the whole operation.
func (s *LoanService) Activate(ctx context.Context, id uint, actorID uint) (*models.LoanApplication, error) {
	var loan *models.LoanApplication

	err := s.db.Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		var err error
		loan, err = r.Loan.FindByIDWithDetails(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		fsm := statemachine.NewLoanFSM(loan)
		if err := fsm.Activate(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}

		if loan.Motor.StockID == nil {
			return &ValidationError{Field: "motor_id", Message: "motor has no stock batch"}
		}
		stock, err := r.Stock.FindByIDForUpdate(ctx, *loan.Motor.StockID)
		if err != nil {
			return err
		}
		if err := stock.DecreaseAvailable(1); err != nil {
			return &ValidationError{Field: "stock", Message: err.Error()}
		}
		if err := r.Stock.Update(ctx, stock); err != nil {
			return err
		}

		now := time.Now()
		loan.ActivatedAt = &now
		return r.Loan.Update(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("loan activated", "loan_id", loan.ID, "motor_id", loan.MotorID)

	s.auditSvc.Log(ctx, actorID, models.AuditActionActivate, "LoanApplication", loan.ID,
		fmt.Sprintf("Unit %s released", loan.Motor.DisplayName()), "", "")

	return loan, nil
}

// Complete closes out an active loan.
func (s *LoanService) Complete(ctx context.Context, id uint, actorID uint) (*models.LoanApplication, error) {
	loan, err := s.repos.Loan.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fsm := statemachine.NewLoanFSM(loan)
	if err := fsm.Complete(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	now := time.Now()
	loan.CompletedAt = &now
	if err := s.repos.Loan.Update(ctx, loan); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, models.AuditActionComplete, "LoanApplication", loan.ID, "Loan completed", "", "")
	return loan, nil
}

// RefreshPaymentProgress is the central re-derivation step: it marks
// schedules overdue against the reference date, completes the loan when
// everything is paid, recomputes risk and synchronizes the repossession
// case. It runs against the caller's repository set so the payment cascade
// commits or rolls back as a unit.
func (s *LoanService) RefreshPaymentProgress(ctx context.Context, r *repository.Repositories, loan *models.LoanApplication, reference time.Time) error {
	flipped, err := r.Schedule.MarkOverdue(ctx, loan.ID, reference)
	if err != nil {
		return err
	}
	if flipped > 0 {
		logger.Info("schedules marked overdue", "loan_id", loan.ID, "count", flipped)
	}

	if loan.Status == models.LoanStatusActive {
		unpaid, err := r.Schedule.CountUnpaid(ctx, loan.ID)
		if err != nil {
			return err
		}
		if unpaid == 0 {
			fsm := statemachine.NewLoanFSM(loan)
			if err := fsm.Complete(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidState, err)
			}
			now := time.Now()
			loan.CompletedAt = &now
			if err := r.Loan.Update(ctx, loan); err != nil {
				return err
			}
			logger.Info("loan fully paid", "loan_id", loan.ID)
		}
	}

	if _, err := s.riskSvc.Evaluate(ctx, r, loan, nil); err != nil {
		return err
	}

	return s.repossessionSvc.SyncForLoan(ctx, r, loan)
}

// RefreshAllActive re-runs the payment-progress derivation for every
// active loan. Wired to the periodic overdue scan.
func (s *LoanService) RefreshAllActive(ctx context.Context) error {
	ids, err := s.repos.Loan.FindActiveIDs(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, id := range ids {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			r := s.repos.WithTx(tx)
			loan, err := r.Loan.FindByID(ctx, id)
			if err != nil {
				return err
			}
			return s.RefreshPaymentProgress(ctx, r, loan, now)
		})
		if err != nil {
			logger.Error("overdue re-scan failed for loan", "loan_id", id, "error", err)
		}
	}

	logger.Info("overdue re-scan finished", "loans", len(ids))
	return nil
}

// SendDueSoonReminders emails applicants whose next installment falls due
// within the given window. Individual send failures are logged and skipped
// so one bad address never blocks the batch.
func (s *LoanService) SendDueSoonReminders(ctx context.Context, withinDays int) error {
	schedules, err := s.repos.Schedule.FindDueSoon(ctx, withinDays)
	if err != nil {
		return err
	}

	sent := 0
	for i := range schedules {
		schedule := schedules[i]
		if schedule.LoanApplication.ApplicantEmail == "" {
			continue
		}
		if err := s.emailSvc.SendUpcomingDueReminder(ctx, &schedule); err != nil {
			logger.Error("due-soon reminder failed",
				"loan_id", schedule.LoanApplicationID,
				"sequence", schedule.Sequence,
				"error", err)
			continue
		}
		sent++
	}

	logger.Info("due-soon reminders sent", "count", sent, "window_days", withinDays)
	return nil
}

// FindByID gets a loan by ID
func (s *LoanService) FindByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	loan, err := s.repos.Loan.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return loan, nil
}

// FindByIDWithDetails gets a loan with all associations preloaded
func (s *LoanService) FindByIDWithDetails(ctx context.Context, id uint) (*models.LoanApplication, error) {
	loan, err := s.repos.Loan.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return loan, nil
}

// List returns loans matching the query
func (s *LoanService) List(ctx context.Context, query *repository.LoanQuery) ([]models.LoanApplication, int64, error) {
	return s.repos.Loan.List(ctx, query)
}

// Schedule returns the loan's amortization lines in order.
func (s *LoanService) Schedule(ctx context.Context, loanID uint) ([]models.PaymentSchedule, error) {
	if _, err := s.FindByID(ctx, loanID); err != nil {
		return nil, err
	}
	return s.repos.Schedule.FindByLoan(ctx, loanID)
}

// GetStats returns loan counts by status
func (s *LoanService) GetStats(ctx context.Context) (*repository.LoanStats, error) {
	return s.repos.Loan.GetStats(ctx)
}

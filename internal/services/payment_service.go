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
	"github.com/motofin/motofin-api/pkg/logger"
)

// PaymentService records collections. Recording a payment is the one
// state-changing transaction of the collection side: it settles the
// schedule line and ripples into loan completion, risk and repossession
// state, all inside a single database transaction.
type PaymentService struct {
	db              *gorm.DB
	repos           *repository.Repositories
	loanSvc         *LoanService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	db *gorm.DB,
	repos *repository.Repositories,
	loanSvc *LoanService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *PaymentService {
	return &PaymentService{
		db:              db,
		repos:           repos,
		loanSvc:         loanSvc,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

// RecordPaymentInput carries one collection against a schedule line.
type RecordPaymentInput struct {
	LoanApplicationID uint
	PaymentScheduleID uint
	Amount            decimal.Decimal
	PaymentDate       *time.Time
	Reference         string
	Notes             string
	PaymentMethod     string
	RecordedByID      uint
}

var validPaymentMethods = map[string]bool{
	models.PaymentMethodCash:         true,
	models.PaymentMethodGCash:        true,
	models.PaymentMethodBankTransfer: true,
	models.PaymentMethodCard:         true,
}

// validatePayment enforces the exact-match collection policy: the line must
// belong to the declared loan, must not already be settled, and the amount
// must equal the installment total to the cent.
func validatePayment(loan *models.LoanApplication, schedule *models.PaymentSchedule, amount decimal.Decimal) error {
	if schedule.LoanApplicationID != loan.ID {
		return &ValidationError{Field: "payment_schedule_id", Message: "installment does not belong to this loan"}
	}
	if schedule.IsPaid() {
		return fmt.Errorf("%w: installment %d is already settled", ErrDuplicate, schedule.Sequence)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if !amount.Equal(schedule.TotalAmount) {
		return &ValidationError{
			Field:   "amount",
			Message: fmt.Sprintf("must equal the installment total of %s", schedule.TotalAmount.StringFixed(2)),
		}
	}
	return nil
}

// Record validates and persists a payment, then runs the full progress
// cascade. The amount must match the installment total exactly; partial
// payments and overpayments are rejected. A schedule line takes at most
// one payment, backed by the unique index, so a concurrent duplicate
// surfaces as ErrDuplicate instead of silently overwriting.
func (s *PaymentService) Record(ctx context.Context, input *RecordPaymentInput) (*models.Payment, error) {
	method := input.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !validPaymentMethods[method] {
		return nil, &ValidationError{Field: "payment_method", Message: fmt.Sprintf("unknown payment method %q", method)}
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	var payment *models.Payment
	var schedule *models.PaymentSchedule
	var loan *models.LoanApplication

	err := s.db.Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		var err error
		loan, err = r.Loan.FindByID(ctx, input.LoanApplicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		schedule, err = r.Schedule.FindByID(ctx, input.PaymentScheduleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := validatePayment(loan, schedule, input.Amount); err != nil {
			return err
		}

		payment = &models.Payment{
			LoanApplicationID: loan.ID,
			PaymentScheduleID: schedule.ID,
			Amount:            input.Amount,
			PaymentDate:       paymentDate,
			Reference:         input.Reference,
			Notes:             input.Notes,
			PaymentMethod:     method,
			RecordedByID:      input.RecordedByID,
		}
		if err := r.Payment.Create(ctx, payment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: installment %d is already settled", ErrDuplicate, schedule.Sequence)
			}
			return err
		}

		schedule.MarkPaid(paymentDate)
		if err := r.Schedule.Update(ctx, schedule); err != nil {
			return err
		}

		return s.loanSvc.RefreshPaymentProgress(ctx, r, loan, paymentDate)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment recorded",
		"loan_id", loan.ID,
		"sequence", schedule.Sequence,
		"amount", payment.Amount,
		"method", payment.PaymentMethod)

	s.auditSvc.Log(ctx, input.RecordedByID, models.AuditActionCreate, "Payment", payment.ID,
		fmt.Sprintf("Installment %d of loan %d paid: %s via %s", schedule.Sequence, loan.ID, payment.Amount.StringFixed(2), payment.PaymentMethod), "", "")

	if loan.ApplicantEmail != "" {
		paidLoan, paidPayment, paidSchedule := *loan, *payment, *schedule
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.emailSvc.SendPaymentReceipt(ctx, &paidLoan, &paidPayment, &paidSchedule)
		})
	}

	return payment, nil
}

// FindByID gets a payment by ID
func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repos.Payment.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// FindByLoan returns the loan's payments in date order
func (s *PaymentService) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	return s.repos.Payment.FindByLoan(ctx, loanID)
}

// List returns payments matching the query
func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repos.Payment.List(ctx, query)
}

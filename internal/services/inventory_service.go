package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
)

// InventoryService manages the motor catalogue and the four-bucket stock
// counters.
type InventoryService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	auditSvc *AuditService
}

// NewInventoryService creates a new inventory service
func NewInventoryService(db *gorm.DB, repos *repository.Repositories, auditSvc *AuditService) *InventoryService {
	return &InventoryService{db: db, repos: repos, auditSvc: auditSvc}
}

// Stock transfer operation names, as accepted by Transfer.
const (
	TransferReserve           = "reserve"
	TransferCancelReservation = "cancel_reservation"
	TransferMarkSold          = "mark_sold"
	TransferMarkRepossessed   = "mark_repossessed"
	TransferReturnToAvailable = "return_to_available"
)

// Transfer moves units between two stock buckets under a row lock, so
// concurrent transfers against the same batch serialize instead of losing
// updates.
func (s *InventoryService) Transfer(ctx context.Context, stockID uint, operation string, amount int) (*models.Stock, error) {
	var stock *models.Stock

	err := s.db.Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		var err error
		stock, err = r.Stock.FindByIDForUpdate(ctx, stockID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		switch operation {
		case TransferReserve:
			err = stock.Reserve(amount)
		case TransferCancelReservation:
			err = stock.CancelReservation(amount)
		case TransferMarkSold:
			err = stock.MarkSold(amount)
		case TransferMarkRepossessed:
			err = stock.MarkRepossessed(amount)
		case TransferReturnToAvailable:
			err = stock.ReturnToAvailable(amount)
		default:
			return &ValidationError{Field: "operation", Message: fmt.Sprintf("unknown transfer operation %q", operation)}
		}
		if err != nil {
			return &ValidationError{Field: "amount", Message: err.Error()}
		}

		return r.Stock.Update(ctx, stock)
	})
	if err != nil {
		return nil, err
	}
	return stock, nil
}

// GetMotor returns the motor with its sale status derived from the loans
// that reference it.
func (s *InventoryService) GetMotor(ctx context.Context, id uint) (*models.Motor, string, error) {
	motor, err := s.repos.Motor.FindByIDWithLoans(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return motor, motor.DeriveStatus(motor.LoanApplications), nil
}

// CreateMotor adds a unit to the catalogue.
func (s *InventoryService) CreateMotor(ctx context.Context, motor *models.Motor, actorID uint) error {
	var verrs ValidationErrors
	if motor.Brand == "" {
		verrs = append(verrs, ValidationError{Field: "brand", Message: "is required"})
	}
	if motor.ModelName == "" {
		verrs = append(verrs, ValidationError{Field: "model_name", Message: "is required"})
	}
	if motor.PurchasePrice.IsNegative() || motor.PurchasePrice.IsZero() {
		verrs = append(verrs, ValidationError{Field: "purchase_price", Message: "must be greater than zero"})
	}
	if len(verrs) > 0 {
		return verrs
	}

	if err := s.repos.Motor.Create(ctx, motor); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actorID, models.AuditActionCreate, "Motor", motor.ID, motor.DisplayName(), "", "")
	return nil
}

// UpdateMotor persists catalogue edits.
func (s *InventoryService) UpdateMotor(ctx context.Context, motor *models.Motor, actorID uint) error {
	if err := s.repos.Motor.Update(ctx, motor); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actorID, models.AuditActionUpdate, "Motor", motor.ID, motor.DisplayName(), "", "")
	return nil
}

// ListMotors returns catalogue entries matching the query
func (s *InventoryService) ListMotors(ctx context.Context, query *repository.ListQuery) ([]models.Motor, int64, error) {
	return s.repos.Motor.List(ctx, query)
}

// GetStock returns one stock batch
func (s *InventoryService) GetStock(ctx context.Context, id uint) (*models.Stock, error) {
	stock, err := s.repos.Stock.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return stock, nil
}

// CreateStock registers a new batch.
func (s *InventoryService) CreateStock(ctx context.Context, stock *models.Stock, actorID uint) error {
	var verrs ValidationErrors
	if stock.Brand == "" {
		verrs = append(verrs, ValidationError{Field: "brand", Message: "is required"})
	}
	if stock.ModelName == "" {
		verrs = append(verrs, ValidationError{Field: "model_name", Message: "is required"})
	}
	if stock.QuantityAvailable < 0 || stock.QuantityReserved < 0 || stock.QuantitySold < 0 || stock.QuantityRepossessed < 0 {
		verrs = append(verrs, ValidationError{Field: "quantities", Message: "cannot be negative"})
	}
	if len(verrs) > 0 {
		return verrs
	}

	if err := s.repos.Stock.Create(ctx, stock); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actorID, models.AuditActionCreate, "Stock", stock.ID,
		fmt.Sprintf("%d %s %s: %d units", stock.Year, stock.Brand, stock.ModelName, stock.TotalQuantity()), "", "")
	return nil
}

// ListStocks returns all stock batches
func (s *InventoryService) ListStocks(ctx context.Context) ([]models.Stock, error) {
	return s.repos.Stock.List(ctx)
}

// ListFinancingTerms returns terms, optionally only active ones
func (s *InventoryService) ListFinancingTerms(ctx context.Context, activeOnly bool) ([]models.FinancingTerm, error) {
	if activeOnly {
		return s.repos.FinancingTerm.FindActive(ctx)
	}
	return s.repos.FinancingTerm.List(ctx)
}

// CreateFinancingTerm registers a new (duration, rate) offering.
func (s *InventoryService) CreateFinancingTerm(ctx context.Context, term *models.FinancingTerm, actorID uint) error {
	var verrs ValidationErrors
	if term.TermYears < 1 {
		verrs = append(verrs, ValidationError{Field: "term_years", Message: "must be at least 1"})
	}
	if term.InterestRate.IsNegative() {
		verrs = append(verrs, ValidationError{Field: "interest_rate", Message: "cannot be negative"})
	}
	if len(verrs) > 0 {
		return verrs
	}

	if err := s.repos.FinancingTerm.Create(ctx, term); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: a term with these years and rate already exists", ErrDuplicate)
		}
		return err
	}
	s.auditSvc.Log(ctx, actorID, models.AuditActionCreate, "FinancingTerm", term.ID,
		fmt.Sprintf("%d years at %s%%", term.TermYears, term.InterestRate.StringFixed(2)), "", "")
	return nil
}

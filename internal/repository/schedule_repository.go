package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motofin/motofin-api/internal/models"
)

// ScheduleRepository defines the interface for payment schedule data access
type ScheduleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PaymentSchedule, error)
	FindByLoan(ctx context.Context, loanID uint) ([]models.PaymentSchedule, error)
	Update(ctx context.Context, schedule *models.PaymentSchedule) error
	// ReplaceForLoan drops any existing schedule for the loan and inserts the
	// given lines. Only safe before the first payment exists.
	ReplaceForLoan(ctx context.Context, loanID uint, schedules []models.PaymentSchedule) error
	// MarkOverdue flips every unpaid line of the loan with a due date before
	// the reference date to overdue. Returns the number of rows changed.
	MarkOverdue(ctx context.Context, loanID uint, reference time.Time) (int64, error)
	CountUnpaid(ctx context.Context, loanID uint) (int64, error)
	// OverdueMetrics returns the count and summed total amount of the loan's
	// overdue lines.
	OverdueMetrics(ctx context.Context, loanID uint) (int, decimal.Decimal, error)
	// PortfolioOverdue aggregates overdue count and amount across all loans.
	PortfolioOverdue(ctx context.Context) (int64, decimal.Decimal, error)
	FindDueSoon(ctx context.Context, withinDays int) ([]models.PaymentSchedule, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uint) (*models.PaymentSchedule, error) {
	var schedule models.PaymentSchedule
	err := r.db.WithContext(ctx).First(&schedule, id).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.PaymentSchedule, error) {
	var schedules []models.PaymentSchedule
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", loanID).
		Order("sequence ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *models.PaymentSchedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(schedule).Error
}

func (r *scheduleRepository) ReplaceForLoan(ctx context.Context, loanID uint, schedules []models.PaymentSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_application_id = ?", loanID).
			Delete(&models.PaymentSchedule{}).Error; err != nil {
			return err
		}
		if len(schedules) == 0 {
			return nil
		}
		return tx.Create(&schedules).Error
	})
}

func (r *scheduleRepository) MarkOverdue(ctx context.Context, loanID uint, reference time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentSchedule{}).
		Where("loan_application_id = ? AND status = ? AND due_date < ?",
			loanID, models.ScheduleStatusDue, reference.Format("2006-01-02")).
		Update("status", models.ScheduleStatusOverdue)
	return result.RowsAffected, result.Error
}

func (r *scheduleRepository) CountUnpaid(ctx context.Context, loanID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentSchedule{}).
		Where("loan_application_id = ? AND status <> ?", loanID, models.ScheduleStatusPaid).
		Count(&count).Error
	return count, err
}

func (r *scheduleRepository) OverdueMetrics(ctx context.Context, loanID uint) (int, decimal.Decimal, error) {
	type row struct {
		Count int
		Total decimal.Decimal
	}
	var res row
	err := r.db.WithContext(ctx).
		Model(&models.PaymentSchedule{}).
		Select("COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total").
		Where("loan_application_id = ? AND status = ?", loanID, models.ScheduleStatusOverdue).
		Scan(&res).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return res.Count, res.Total, nil
}

func (r *scheduleRepository) PortfolioOverdue(ctx context.Context) (int64, decimal.Decimal, error) {
	type row struct {
		Count int64
		Total decimal.Decimal
	}
	var res row
	err := r.db.WithContext(ctx).
		Model(&models.PaymentSchedule{}).
		Select("COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total").
		Where("status = ?", models.ScheduleStatusOverdue).
		Scan(&res).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return res.Count, res.Total, nil
}

// FindDueSoon returns unpaid lines of active loans falling due within the
// given number of days, for reminder emails.
func (r *scheduleRepository) FindDueSoon(ctx context.Context, withinDays int) ([]models.PaymentSchedule, error) {
	var schedules []models.PaymentSchedule
	err := r.db.WithContext(ctx).
		Joins("JOIN loan_applications ON loan_applications.id = payment_schedules.loan_application_id AND loan_applications.status = ?",
			models.LoanStatusActive).
		Where("payment_schedules.status = ?", models.ScheduleStatusDue).
		Where("payment_schedules.due_date >= CURRENT_DATE AND payment_schedules.due_date < CURRENT_DATE + ? * INTERVAL '1 day'", withinDays).
		Preload("LoanApplication").
		Order("payment_schedules.due_date ASC").
		Find(&schedules).Error
	return schedules, err
}

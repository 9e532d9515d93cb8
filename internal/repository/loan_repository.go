package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motofin/motofin-api/internal/models"
)

// LoanRepository defines the interface for loan application data access
type LoanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.LoanApplication, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.LoanApplication, error)
	Create(ctx context.Context, loan *models.LoanApplication) error
	Update(ctx context.Context, loan *models.LoanApplication) error
	List(ctx context.Context, query *LoanQuery) ([]models.LoanApplication, int64, error)
	FindActiveIDs(ctx context.Context) ([]uint, error)
	GetStats(ctx context.Context) (*LoanStats, error)
}

// LoanQuery extends ListQuery with loan-specific filters
type LoanQuery struct {
	*ListQuery
	Status  string
	MotorID uint
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var loan models.LoanApplication
	err := r.db.WithContext(ctx).Preload("FinancingTerm").First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var loan models.LoanApplication
	err := r.db.WithContext(ctx).
		Joins("Motor").
		Joins("FinancingTerm").
		Joins("SubmittedBy").
		Preload("Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("RiskAssessment").
		Preload("RepossessionCase").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) Create(ctx context.Context, loan *models.LoanApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(loan).Error
}

func (r *loanRepository) Update(ctx context.Context, loan *models.LoanApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(loan).Error
}

func (r *loanRepository) List(ctx context.Context, query *LoanQuery) ([]models.LoanApplication, int64, error) {
	var loans []models.LoanApplication
	var total int64

	db := r.db.WithContext(ctx).Model(&models.LoanApplication{})

	if query.Status != "" {
		if strings.Contains(query.Status, ",") {
			statuses := strings.Split(query.Status, ",")
			for i, s := range statuses {
				statuses[i] = strings.TrimSpace(s)
			}
			db = db.Where("loan_applications.status IN ?", statuses)
		} else {
			db = db.Where("loan_applications.status = ?", query.Status)
		}
	}

	if query.MotorID > 0 {
		db = db.Where("loan_applications.motor_id = ?", query.MotorID)
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where(
			"applicant_first_name ILIKE ? OR applicant_last_name ILIKE ? OR applicant_email ILIKE ? OR applicant_phone ILIKE ?",
			search, search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("loan_applications.submitted_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Motor").
		Preload("FinancingTerm").
		Preload("RiskAssessment").
		Find(&loans).Error
	return loans, total, err
}

// FindActiveIDs returns the IDs of all active loans, for the periodic
// overdue re-scan.
func (r *loanRepository) FindActiveIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("status = ?", models.LoanStatusActive).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// LoanStats holds the count of loans by status
type LoanStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}

func (r *loanRepository) GetStats(ctx context.Context) (*LoanStats, error) {
	stats := &LoanStats{}

	rows, err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Select("status, count(*) as count").
		Group("status").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var total int64
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		total += count
		switch status {
		case models.LoanStatusPending:
			stats.Pending = count
		case models.LoanStatusApproved:
			stats.Approved = count
		case models.LoanStatusActive:
			stats.Active = count
		case models.LoanStatusCompleted:
			stats.Completed = count
		}
	}
	stats.Total = total

	return stats, nil
}

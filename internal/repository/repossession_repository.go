package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motofin/motofin-api/internal/models"
)

// RepossessionRepository defines the interface for repossession case data access
type RepossessionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.RepossessionCase, error)
	FindByIDWithEvents(ctx context.Context, id uint) (*models.RepossessionCase, error)
	FindByLoan(ctx context.Context, loanID uint) (*models.RepossessionCase, error)
	Create(ctx context.Context, repoCase *models.RepossessionCase) error
	Update(ctx context.Context, repoCase *models.RepossessionCase) error
	AppendEvents(ctx context.Context, events []models.RepossessionEvent) error
	List(ctx context.Context, query *ListQuery) ([]models.RepossessionCase, int64, error)
	CountOpen(ctx context.Context) (int64, error)
}

type repossessionRepository struct {
	db *gorm.DB
}

// NewRepossessionRepository creates a new repossession case repository
func NewRepossessionRepository(db *gorm.DB) RepossessionRepository {
	return &repossessionRepository{db: db}
}

func (r *repossessionRepository) FindByID(ctx context.Context, id uint) (*models.RepossessionCase, error) {
	var repoCase models.RepossessionCase
	err := r.db.WithContext(ctx).
		Preload("LoanApplication").
		First(&repoCase, id).Error
	if err != nil {
		return nil, err
	}
	return &repoCase, nil
}

func (r *repossessionRepository) FindByIDWithEvents(ctx context.Context, id uint) (*models.RepossessionCase, error) {
	var repoCase models.RepossessionCase
	err := r.db.WithContext(ctx).
		Preload("LoanApplication").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Events.CreatedBy").
		First(&repoCase, id).Error
	if err != nil {
		return nil, err
	}
	return &repoCase, nil
}

func (r *repossessionRepository) FindByLoan(ctx context.Context, loanID uint) (*models.RepossessionCase, error) {
	var repoCase models.RepossessionCase
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", loanID).
		First(&repoCase).Error
	if err != nil {
		return nil, err
	}
	return &repoCase, nil
}

func (r *repossessionRepository) Create(ctx context.Context, repoCase *models.RepossessionCase) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(repoCase).Error
}

func (r *repossessionRepository) Update(ctx context.Context, repoCase *models.RepossessionCase) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(repoCase).Error
}

// AppendEvents inserts timeline events. Events are append-only: there is
// deliberately no update or delete here.
func (r *repossessionRepository) AppendEvents(ctx context.Context, events []models.RepossessionEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *repossessionRepository) List(ctx context.Context, query *ListQuery) ([]models.RepossessionCase, int64, error) {
	var cases []models.RepossessionCase
	var total int64

	db := r.db.WithContext(ctx).Model(&models.RepossessionCase{})

	if status := query.Filters["status"]; status != "" {
		if status == "open" {
			db = db.Where("repossession_cases.status NOT IN ?",
				[]string{models.RepossessionStatusRecovered, models.RepossessionStatusClosed})
		} else {
			db = db.Where("repossession_cases.status = ?", status)
		}
	}

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("JOIN loan_applications ON loan_applications.id = repossession_cases.loan_application_id").
			Where("loan_applications.applicant_first_name ILIKE ? OR loan_applications.applicant_last_name ILIKE ? OR loan_applications.applicant_email ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order("repossession_cases.overdue_installments DESC, repossession_cases.updated_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Select("repossession_cases.*").
		Preload("LoanApplication").
		Find(&cases).Error
	return cases, total, err
}

func (r *repossessionRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RepossessionCase{}).
		Where("status NOT IN ?", []string{models.RepossessionStatusRecovered, models.RepossessionStatusClosed}).
		Count(&count).Error
	return count, err
}

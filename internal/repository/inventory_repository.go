package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motofin/motofin-api/internal/models"
)

// FinancingTermRepository defines the interface for financing term data access
type FinancingTermRepository interface {
	FindByID(ctx context.Context, id uint) (*models.FinancingTerm, error)
	FindActive(ctx context.Context) ([]models.FinancingTerm, error)
	Create(ctx context.Context, term *models.FinancingTerm) error
	Update(ctx context.Context, term *models.FinancingTerm) error
	List(ctx context.Context) ([]models.FinancingTerm, error)
}

type financingTermRepository struct {
	db *gorm.DB
}

// NewFinancingTermRepository creates a new financing term repository
func NewFinancingTermRepository(db *gorm.DB) FinancingTermRepository {
	return &financingTermRepository{db: db}
}

func (r *financingTermRepository) FindByID(ctx context.Context, id uint) (*models.FinancingTerm, error) {
	var term models.FinancingTerm
	err := r.db.WithContext(ctx).First(&term, id).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *financingTermRepository) FindActive(ctx context.Context) ([]models.FinancingTerm, error) {
	var terms []models.FinancingTerm
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("term_years ASC, interest_rate ASC").
		Find(&terms).Error
	return terms, err
}

func (r *financingTermRepository) Create(ctx context.Context, term *models.FinancingTerm) error {
	return r.db.WithContext(ctx).Create(term).Error
}

func (r *financingTermRepository) Update(ctx context.Context, term *models.FinancingTerm) error {
	return r.db.WithContext(ctx).Save(term).Error
}

func (r *financingTermRepository) List(ctx context.Context) ([]models.FinancingTerm, error) {
	var terms []models.FinancingTerm
	err := r.db.WithContext(ctx).
		Order("term_years ASC, interest_rate ASC").
		Find(&terms).Error
	return terms, err
}

// MotorRepository defines the interface for motor data access
type MotorRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Motor, error)
	FindByIDWithLoans(ctx context.Context, id uint) (*models.Motor, error)
	Create(ctx context.Context, motor *models.Motor) error
	Update(ctx context.Context, motor *models.Motor) error
	List(ctx context.Context, query *ListQuery) ([]models.Motor, int64, error)
}

type motorRepository struct {
	db *gorm.DB
}

// NewMotorRepository creates a new motor repository
func NewMotorRepository(db *gorm.DB) MotorRepository {
	return &motorRepository{db: db}
}

func (r *motorRepository) FindByID(ctx context.Context, id uint) (*models.Motor, error) {
	var motor models.Motor
	err := r.db.WithContext(ctx).Preload("Stock").First(&motor, id).Error
	if err != nil {
		return nil, err
	}
	return &motor, nil
}

func (r *motorRepository) FindByIDWithLoans(ctx context.Context, id uint) (*models.Motor, error) {
	var motor models.Motor
	err := r.db.WithContext(ctx).
		Preload("Stock").
		Preload("LoanApplications", func(db *gorm.DB) *gorm.DB {
			return db.Order("submitted_at DESC")
		}).
		First(&motor, id).Error
	if err != nil {
		return nil, err
	}
	return &motor, nil
}

func (r *motorRepository) Create(ctx context.Context, motor *models.Motor) error {
	return r.db.WithContext(ctx).Create(motor).Error
}

func (r *motorRepository) Update(ctx context.Context, motor *models.Motor) error {
	return r.db.WithContext(ctx).Save(motor).Error
}

func (r *motorRepository) List(ctx context.Context, query *ListQuery) ([]models.Motor, int64, error) {
	var motors []models.Motor
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Motor{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("brand ILIKE ? OR model_name ILIKE ? OR chassis_number ILIKE ?", search, search, search)
	}

	if motorType := query.Filters["type"]; motorType != "" {
		db = db.Where("type = ?", motorType)
	}
	if brand := query.Filters["brand"]; brand != "" {
		db = db.Where("brand = ?", brand)
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
		db = db.Order("brand ASC, model_name ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Stock").Find(&motors).Error
	return motors, total, err
}

// StockRepository defines the interface for stock counter data access
type StockRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Stock, error)
	// FindByIDForUpdate loads the stock row under a row-level lock so that
	// concurrent counter transfers against the same batch serialize. Must be
	// called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Stock, error)
	Create(ctx context.Context, stock *models.Stock) error
	Update(ctx context.Context, stock *models.Stock) error
	List(ctx context.Context) ([]models.Stock, error)
}

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) FindByID(ctx context.Context, id uint) (*models.Stock, error) {
	var stock models.Stock
	err := r.db.WithContext(ctx).First(&stock, id).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Stock, error) {
	var stock models.Stock
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&stock, id).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepository) Create(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

func (r *stockRepository) Update(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

func (r *stockRepository) List(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	err := r.db.WithContext(ctx).Order("id ASC").Find(&stocks).Error
	return stocks, err
}

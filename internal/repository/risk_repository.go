package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/models"
)

// RiskRepository defines the interface for risk assessment data access
type RiskRepository interface {
	FindByLoan(ctx context.Context, loanID uint) (*models.RiskAssessment, error)
	// Save inserts or updates the loan's single assessment row.
	Save(ctx context.Context, assessment *models.RiskAssessment) error
	CountByLevel(ctx context.Context) (map[string]int64, error)
	ListByLevel(ctx context.Context, level string) ([]models.RiskAssessment, error)
}

type riskRepository struct {
	db *gorm.DB
}

// NewRiskRepository creates a new risk assessment repository
func NewRiskRepository(db *gorm.DB) RiskRepository {
	return &riskRepository{db: db}
}

func (r *riskRepository) FindByLoan(ctx context.Context, loanID uint) (*models.RiskAssessment, error) {
	var assessment models.RiskAssessment
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", loanID).
		First(&assessment).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *riskRepository) Save(ctx context.Context, assessment *models.RiskAssessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

func (r *riskRepository) CountByLevel(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&models.RiskAssessment{}).
		Select("risk_level, count(*) as count").
		Group("risk_level").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		counts[level] = count
	}
	return counts, nil
}

func (r *riskRepository) ListByLevel(ctx context.Context, level string) ([]models.RiskAssessment, error) {
	var assessments []models.RiskAssessment
	db := r.db.WithContext(ctx).Preload("LoanApplication")
	if level != "" {
		db = db.Where("risk_level = ?", level)
	}
	err := db.Order("score DESC").Find(&assessments).Error
	return assessments, err
}

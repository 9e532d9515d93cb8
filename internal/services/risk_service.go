package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
	"github.com/motofin/motofin-api/pkg/logger"
)

// RiskService recomputes the per-loan risk assessment snapshot. The scoring
// itself is a pure function on the model; this service feeds it the loan's
// current overdue count and persists the result in place.
type RiskService struct {
	repos *repository.Repositories
}

// NewRiskService creates a new risk service
func NewRiskService(repos *repository.Repositories) *RiskService {
	return &RiskService{repos: repos}
}

// RiskEvaluationInput carries caller overrides for a re-evaluation. Nil
// fields preserve whatever the previous assessment captured.
type RiskEvaluationInput struct {
	BaseScore   *int
	CreditScore *int
	Notes       *string
}

// EvaluateForLoan recomputes and stores the assessment for a loan.
func (s *RiskService) EvaluateForLoan(ctx context.Context, loanID uint, input *RiskEvaluationInput) (*models.RiskAssessment, error) {
	loan, err := s.repos.Loan.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Evaluate(ctx, s.repos, loan, input)
}

// Evaluate runs the recomputation against the given repository set, so the
// payment cascade can call it inside its transaction.
func (s *RiskService) Evaluate(ctx context.Context, r *repository.Repositories, loan *models.LoanApplication, input *RiskEvaluationInput) (*models.RiskAssessment, error) {
	assessment, err := r.Risk.FindByLoan(ctx, loan.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		assessment = &models.RiskAssessment{
			LoanApplicationID: loan.ID,
			BaseScore:         models.DefaultBaseScore,
			CreditScore:       models.DefaultCreditScore,
		}
	}

	if input != nil {
		if input.BaseScore != nil {
			assessment.BaseScore = *input.BaseScore
		}
		if input.CreditScore != nil {
			assessment.CreditScore = *input.CreditScore
		}
		if input.Notes != nil {
			assessment.Notes = *input.Notes
		}
	}

	overdueCount, _, err := r.Schedule.OverdueMetrics(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	comp := models.ComputeRisk(loan, assessment.BaseScore, assessment.CreditScore, overdueCount)

	assessment.Score = comp.Score
	assessment.RiskLevel = comp.RiskLevel
	assessment.MissedPayments = comp.MissedPayments
	assessment.EmploymentPenalty = comp.EmploymentPenalty
	assessment.IncomeFactor = comp.IncomeFactor
	assessment.CreditFactor = comp.CreditFactor
	assessment.DebtToIncomeRatio = comp.DebtToIncomeRatio

	if err := r.Risk.Save(ctx, assessment); err != nil {
		return nil, err
	}

	logger.Debug("risk assessment updated",
		"loan_id", loan.ID,
		"score", assessment.Score,
		"risk_level", assessment.RiskLevel,
		"missed_payments", assessment.MissedPayments)

	return assessment, nil
}

// GetForLoan returns the loan's current assessment.
func (s *RiskService) GetForLoan(ctx context.Context, loanID uint) (*models.RiskAssessment, error) {
	assessment, err := s.repos.Risk.FindByLoan(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return assessment, nil
}

// LevelDistribution returns the count of assessments per risk level.
func (s *RiskService) LevelDistribution(ctx context.Context) (map[string]int64, error) {
	return s.repos.Risk.CountByLevel(ctx)
}

// ListByLevel returns assessments filtered by level, highest score first.
func (s *RiskService) ListByLevel(ctx context.Context, level string) ([]models.RiskAssessment, error) {
	return s.repos.Risk.ListByLevel(ctx, level)
}

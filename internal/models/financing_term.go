package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancingTerm is a reusable (duration, annual rate) pair offered to
// applicants. Loans capture the rate at submission time, so editing a term
// later never changes an existing loan.
type FinancingTerm struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	TermYears    int             `gorm:"not null;uniqueIndex:idx_term_rate" json:"term_years"`
	InterestRate decimal.Decimal `gorm:"type:decimal(5,2);not null;uniqueIndex:idx_term_rate" json:"interest_rate"`
	Active       bool            `gorm:"default:true" json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for FinancingTerm
func (FinancingTerm) TableName() string {
	return "financing_terms"
}

// TotalMonths returns the number of monthly installments for this term.
func (t *FinancingTerm) TotalMonths() int {
	return t.TermYears * 12
}

// FinancingTermResponse is the JSON response format for financing terms
type FinancingTermResponse struct {
	ID           uint            `json:"id"`
	TermYears    int             `json:"term_years"`
	TotalMonths  int             `json:"total_months"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Active       bool            `json:"active"`
}

// ToResponse converts FinancingTerm to FinancingTermResponse
func (t *FinancingTerm) ToResponse() FinancingTermResponse {
	return FinancingTermResponse{
		ID:           t.ID,
		TermYears:    t.TermYears,
		TotalMonths:  t.TotalMonths(),
		InterestRate: t.InterestRate,
		Active:       t.Active,
	}
}

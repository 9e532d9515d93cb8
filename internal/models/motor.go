package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Motor represents a motorcycle unit offered for financing. Its sale status
// is not stored: it is derived from the statuses of the loan applications
// that reference it, so it can never go stale across processes.
type Motor struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Type          string          `gorm:"not null;default:scooter" json:"type"`
	Brand         string          `gorm:"not null" json:"brand"`
	ModelName     string          `gorm:"column:model_name;not null" json:"model_name"`
	Year          int             `gorm:"not null" json:"year"`
	ChassisNumber *string         `json:"chassis_number"`
	Color         string          `json:"color"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"purchase_price"`
	StockID       *uint           `gorm:"index" json:"stock_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Associations
	Stock            *Stock            `gorm:"foreignKey:StockID" json:"stock,omitempty"`
	LoanApplications []LoanApplication `gorm:"foreignKey:MotorID" json:"loan_applications,omitempty"`
}

// TableName specifies the table name for Motor
func (Motor) TableName() string {
	return "motors"
}

// Motor type constants
const (
	MotorTypeScooter   = "scooter"
	MotorTypeUnderbone = "underbone"
	MotorTypeStandard  = "standard"
	MotorTypeCruiser   = "cruiser"
	MotorTypeSport     = "sport"
	MotorTypeTouring   = "touring"
	MotorTypeAdventure = "adventure"
	MotorTypeMoped     = "moped"
	MotorTypeTricycle  = "tricycle"
)

// Derived motor status constants
const (
	MotorStatusAvailable   = "available"
	MotorStatusReserved    = "reserved"
	MotorStatusSold        = "sold"
	MotorStatusRepossessed = "repossessed"
)

// DisplayName returns the human-readable unit name, e.g. "2024 Yamaha Mio".
func (m *Motor) DisplayName() string {
	return fmt.Sprintf("%d %s %s", m.Year, m.Brand, m.ModelName)
}

// DeriveStatus computes the motor's sale status from the given loan
// applications: an active loan means the unit is sold, an approved loan
// means it is reserved pending release, otherwise it is on the floor.
func (m *Motor) DeriveStatus(loans []LoanApplication) string {
	status := MotorStatusAvailable
	for i := range loans {
		switch loans[i].Status {
		case LoanStatusActive:
			return MotorStatusSold
		case LoanStatusApproved:
			status = MotorStatusReserved
		}
	}
	return status
}

// MotorResponse is the JSON response format for motors
type MotorResponse struct {
	ID            uint            `json:"id"`
	Type          string          `json:"type"`
	Brand         string          `json:"brand"`
	ModelName     string          `json:"model_name"`
	Year          int             `json:"year"`
	ChassisNumber *string         `json:"chassis_number"`
	Color         string          `json:"color"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	DisplayName   string          `json:"display_name"`
	Status        string          `json:"status,omitempty"`
	StockID       *uint           `json:"stock_id"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToResponse converts Motor to MotorResponse. Status is filled by the
// caller when the related loans are loaded.
func (m *Motor) ToResponse() MotorResponse {
	return MotorResponse{
		ID:            m.ID,
		Type:          m.Type,
		Brand:         m.Brand,
		ModelName:     m.ModelName,
		Year:          m.Year,
		ChassisNumber: m.ChassisNumber,
		Color:         m.Color,
		PurchasePrice: m.PurchasePrice,
		DisplayName:   m.DisplayName(),
		StockID:       m.StockID,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
}

package models

import (
	"fmt"
	"time"
)

// Stock tracks inventory counts for a motorcycle batch across four buckets.
// Every transfer moves units between exactly two buckets, so the total is
// conserved by construction. Callers persist a Stock only after a transfer
// method returned nil, holding a row lock for the whole read-modify-write.
type Stock struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Brand               string    `gorm:"not null" json:"brand"`
	ModelName           string    `gorm:"column:model_name;not null" json:"model_name"`
	Year                int       `gorm:"not null" json:"year"`
	Color               string    `json:"color"`
	QuantityAvailable   int       `gorm:"not null;default:0" json:"quantity_available"`
	QuantityReserved    int       `gorm:"not null;default:0" json:"quantity_reserved"`
	QuantitySold        int       `gorm:"not null;default:0" json:"quantity_sold"`
	QuantityRepossessed int       `gorm:"not null;default:0" json:"quantity_repossessed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Associations
	Motors []Motor `gorm:"foreignKey:StockID" json:"motors,omitempty"`
}

// TableName specifies the table name for Stock
func (Stock) TableName() string {
	return "stocks"
}

// TotalQuantity returns the sum across all four buckets.
func (s *Stock) TotalQuantity() int {
	return s.QuantityAvailable + s.QuantityReserved + s.QuantitySold + s.QuantityRepossessed
}

// Reserve moves units from available to reserved.
func (s *Stock) Reserve(amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if s.QuantityAvailable < amount {
		return fmt.Errorf("insufficient available stock: have %d, requested %d", s.QuantityAvailable, amount)
	}
	s.QuantityAvailable -= amount
	s.QuantityReserved += amount
	return nil
}

// CancelReservation moves units from reserved back to available.
func (s *Stock) CancelReservation(amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if s.QuantityReserved < amount {
		return fmt.Errorf("cannot cancel more than reserved: have %d, requested %d", s.QuantityReserved, amount)
	}
	s.QuantityReserved -= amount
	s.QuantityAvailable += amount
	return nil
}

// MarkSold moves units into sold, drawing from available first and falling
// back to reserved when available alone cannot cover the amount.
func (s *Stock) MarkSold(amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if s.QuantityAvailable+s.QuantityReserved < amount {
		return fmt.Errorf("insufficient stock for sale: have %d available and %d reserved, requested %d",
			s.QuantityAvailable, s.QuantityReserved, amount)
	}
	fromAvailable := amount
	if fromAvailable > s.QuantityAvailable {
		fromAvailable = s.QuantityAvailable
	}
	s.QuantityAvailable -= fromAvailable
	s.QuantityReserved -= amount - fromAvailable
	s.QuantitySold += amount
	return nil
}

// MarkRepossessed moves units from sold to repossessed.
func (s *Stock) MarkRepossessed(amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if s.QuantitySold < amount {
		return fmt.Errorf("cannot repossess more than sold: have %d, requested %d", s.QuantitySold, amount)
	}
	s.QuantitySold -= amount
	s.QuantityRepossessed += amount
	return nil
}

// ReturnToAvailable moves units from repossessed back to available.
func (s *Stock) ReturnToAvailable(amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if s.QuantityRepossessed < amount {
		return fmt.Errorf("cannot return more than repossessed: have %d, requested %d", s.QuantityRepossessed, amount)
	}
	s.QuantityRepossessed -= amount
	s.QuantityAvailable += amount
	return nil
}

// DecreaseAvailable moves units from available to sold. Used when a loan
// activates and the financed motor leaves the floor.
func (s *Stock) DecreaseAvailable(amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if s.QuantityAvailable < amount {
		return fmt.Errorf("insufficient available stock: have %d, requested %d", s.QuantityAvailable, amount)
	}
	s.QuantityAvailable -= amount
	s.QuantitySold += amount
	return nil
}

// IncreaseAvailable moves units from sold back to available. Used when a
// repossession case is recovered and the unit returns to the floor.
func (s *Stock) IncreaseAvailable(amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if s.QuantitySold < amount {
		return fmt.Errorf("cannot restore more than sold: have %d, requested %d", s.QuantitySold, amount)
	}
	s.QuantitySold -= amount
	s.QuantityAvailable += amount
	return nil
}

func validateAmount(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	return nil
}

// StockResponse is the JSON response format for stock batches
type StockResponse struct {
	ID                  uint   `json:"id"`
	Brand               string `json:"brand"`
	ModelName           string `json:"model_name"`
	Year                int    `json:"year"`
	Color               string `json:"color"`
	QuantityAvailable   int    `json:"quantity_available"`
	QuantityReserved    int    `json:"quantity_reserved"`
	QuantitySold        int    `json:"quantity_sold"`
	QuantityRepossessed int    `json:"quantity_repossessed"`
	TotalQuantity       int    `json:"total_quantity"`
}

// ToResponse converts Stock to StockResponse
func (s *Stock) ToResponse() StockResponse {
	return StockResponse{
		ID:                  s.ID,
		Brand:               s.Brand,
		ModelName:           s.ModelName,
		Year:                s.Year,
		Color:               s.Color,
		QuantityAvailable:   s.QuantityAvailable,
		QuantityReserved:    s.QuantityReserved,
		QuantitySold:        s.QuantitySold,
		QuantityRepossessed: s.QuantityRepossessed,
		TotalQuantity:       s.TotalQuantity(),
	}
}

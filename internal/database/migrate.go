package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/models"
)

// Migrate creates or updates the schema for every model and the receipt
// number sequence.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.FinancingTerm{},
		&models.Stock{},
		&models.Motor{},
		&models.LoanApplication{},
		&models.PaymentSchedule{},
		&models.Payment{},
		&models.RiskAssessment{},
		&models.RepossessionCase{},
		&models.RepossessionEvent{},
		&models.POSSession{},
		&models.POSTransaction{},
		&models.ReceiptLog{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Receipt numbers come from a database sequence so concurrent terminals
	// never collide.
	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS receipt_number_seq").Error; err != nil {
		return fmt.Errorf("failed to create receipt sequence: %w", err)
	}

	return nil
}

package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User          UserRepository
	FinancingTerm FinancingTermRepository
	Motor         MotorRepository
	Stock         StockRepository
	Loan          LoanRepository
	Schedule      ScheduleRepository
	Payment       PaymentRepository
	Risk          RiskRepository
	Repossession  RepossessionRepository
	POS           POSRepository
	Notification  NotificationRepository
	RefreshToken  RefreshTokenRepository
	Audit         AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		FinancingTerm: NewFinancingTermRepository(db),
		Motor:         NewMotorRepository(db),
		Stock:         NewStockRepository(db),
		Loan:          NewLoanRepository(db),
		Schedule:      NewScheduleRepository(db),
		Payment:       NewPaymentRepository(db),
		Risk:          NewRiskRepository(db),
		Repossession:  NewRepossessionRepository(db),
		POS:           NewPOSRepository(db),
		Notification:  NewNotificationRepository(db),
		RefreshToken:  NewRefreshTokenRepository(db),
		Audit:         NewAuditRepository(db),
	}
}

// WithTx returns a Repositories set bound to the given transaction, so a
// service can run a multi-repository write atomically.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return NewRepositories(tx)
}

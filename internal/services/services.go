package services

import (
	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/config"
	"github.com/motofin/motofin-api/internal/jobs"
	"github.com/motofin/motofin-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Loan         *LoanService
	Payment      *PaymentService
	Schedule     *PaymentScheduleService
	Risk         *RiskService
	Repossession *RepossessionService
	Inventory    *InventoryService
	POS          *POSService
	Report       *ReportService
	Export       *ExportService
	Notification *NotificationService
	Email        *EmailService
	Audit        *AuditService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(repos.Audit)

	riskSvc := NewRiskService(repos)
	repossessionSvc := NewRepossessionService(repos, emailSvc, worker)
	loanSvc := NewLoanService(db, repos, riskSvc, repossessionSvc, notificationSvc, emailSvc, auditSvc, worker)
	paymentSvc := NewPaymentService(db, repos, loanSvc, notificationSvc, emailSvc, auditSvc, worker)
	reportSvc := NewReportService(db, repos)

	return &Services{
		Auth:         NewAuthService(repos, cfg),
		User:         NewUserService(repos, worker, emailSvc, auditSvc),
		Loan:         loanSvc,
		Payment:      paymentSvc,
		Schedule:     NewPaymentScheduleService(),
		Risk:         riskSvc,
		Repossession: repossessionSvc,
		Inventory:    NewInventoryService(db, repos, auditSvc),
		POS:          NewPOSService(db, repos, paymentSvc),
		Report:       reportSvc,
		Export:       NewExportService(repos, reportSvc),
		Notification: notificationSvc,
		Email:        emailSvc,
		Audit:        auditSvc,
	}
}

package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"github.com/motofin/motofin-api/internal/config"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// EmailService sends transactional email to applicants and staff through
// Resend.
type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// SendAccountCreated welcomes a new staff account.
func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		Role   string
		AppURL string
	}{
		Name:   user.FullName,
		Role:   user.Role,
		AppURL: s.config.AppURL,
	}

	return s.send(user.Email, "Welcome to MotoFin", "account_created.html", data)
}

// SendLoanApproved notifies the applicant that financing was approved.
// Requires loan.Motor and loan.FinancingTerm to be loaded.
func (s *EmailService) SendLoanApproved(ctx context.Context, loan *models.LoanApplication) error {
	data := struct {
		Name           string
		MotorName      string
		Principal      string
		TermMonths     int
		MonthlyPayment string
	}{
		Name:           loan.ApplicantFullName(),
		MotorName:      loan.Motor.DisplayName(),
		Principal:      loan.PrincipalAmount.StringFixed(2),
		TermMonths:     loan.FinancingTerm.TotalMonths(),
		MonthlyPayment: loan.MonthlyPayment.StringFixed(2),
	}

	return s.send(loan.ApplicantEmail, "Your financing has been approved", "loan_approved.html", data)
}

// SendPaymentReceipt confirms a recorded payment to the applicant.
func (s *EmailService) SendPaymentReceipt(ctx context.Context, loan *models.LoanApplication, payment *models.Payment, schedule *models.PaymentSchedule) error {
	data := struct {
		Name        string
		Sequence    int
		Amount      string
		PaymentDate string
		Method      string
		Reference   string
	}{
		Name:        loan.ApplicantFullName(),
		Sequence:    schedule.Sequence,
		Amount:      payment.Amount.StringFixed(2),
		PaymentDate: payment.PaymentDate.Format("2006-01-02"),
		Method:      payment.PaymentMethod,
		Reference:   payment.Reference,
	}

	return s.send(loan.ApplicantEmail, "Payment received", "payment_receipt.html", data)
}

// SendOverdueReminder tells the applicant about outstanding installments.
func (s *EmailService) SendOverdueReminder(ctx context.Context, loan *models.LoanApplication, repoCase *models.RepossessionCase, message string) error {
	data := struct {
		Name         string
		OverdueCount int
		OverdueTotal string
		Message      string
	}{
		Name:         loan.ApplicantFullName(),
		OverdueCount: repoCase.OverdueInstallments,
		OverdueTotal: repoCase.TotalOverdueAmount.StringFixed(2),
		Message:      message,
	}

	return s.send(loan.ApplicantEmail, "Overdue payment reminder", "overdue_reminder.html", data)
}

// SendUpcomingDueReminder warns the applicant about an installment falling
// due soon. Requires schedule.LoanApplication to be loaded.
func (s *EmailService) SendUpcomingDueReminder(ctx context.Context, schedule *models.PaymentSchedule) error {
	loan := &schedule.LoanApplication
	data := struct {
		Name     string
		Sequence int
		Amount   string
		DueDate  string
	}{
		Name:     loan.ApplicantFullName(),
		Sequence: schedule.Sequence,
		Amount:   schedule.TotalAmount.StringFixed(2),
		DueDate:  schedule.DueDate.Format("2006-01-02"),
	}

	return s.send(loan.ApplicantEmail, "Upcoming payment", "upcoming_due.html", data)
}

func (s *EmailService) send(to, subject, templateName string, data interface{}) error {
	body, err := s.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error("failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}

	logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

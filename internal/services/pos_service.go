package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
	"github.com/motofin/motofin-api/pkg/logger"
)

// POSService runs the cashier terminal: sessions, terminal payments,
// receipts.
type POSService struct {
	db         *gorm.DB
	repos      *repository.Repositories
	paymentSvc *PaymentService
}

// NewPOSService creates a new point-of-sale service
func NewPOSService(db *gorm.DB, repos *repository.Repositories, paymentSvc *PaymentService) *POSService {
	return &POSService{db: db, repos: repos, paymentSvc: paymentSvc}
}

// OpenSession starts a cashier shift. A cashier can have only one open
// session at a time.
func (s *POSService) OpenSession(ctx context.Context, userID uint, openingCash decimal.Decimal, notes string) (*models.POSSession, error) {
	if openingCash.IsNegative() {
		return nil, &ValidationError{Field: "opening_cash", Message: "cannot be negative"}
	}

	if _, err := s.repos.POS.FindOpenSessionByUser(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: you already have an open session", ErrDuplicate)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := &models.POSSession{
		OpenedByID:  userID,
		OpeningCash: openingCash,
		Status:      models.POSSessionOpen,
		Notes:       notes,
	}
	if err := s.repos.POS.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("pos session opened", "session_id", session.ID, "user_id", userID)
	return session, nil
}

// CloseSession reconciles the drawer and closes the shift. The cash
// variance (counted minus expected) is computed from the session's cash
// transactions.
func (s *POSService) CloseSession(ctx context.Context, sessionID uint, closingCash decimal.Decimal, notes string) (*models.POSSession, error) {
	if closingCash.IsNegative() {
		return nil, &ValidationError{Field: "closing_cash", Message: "cannot be negative"}
	}

	session, err := s.repos.POS.FindSessionWithTransactions(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !session.CloseSession(closingCash, notes, time.Now()) {
		return nil, fmt.Errorf("%w: session is already closed", ErrInvalidState)
	}
	if err := s.repos.POS.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("pos session closed",
		"session_id", session.ID,
		"total_collected", session.TotalCollected(),
		"cash_variance", session.CashVariance())
	return session, nil
}

// RecordTerminalPayment takes a payment through an open session: the
// payment cascade runs first, then the session transaction and its receipt
// are written. A receipt failure after a committed payment is logged, not
// rolled back: the payment stands.
func (s *POSService) RecordTerminalPayment(ctx context.Context, sessionID uint, input *RecordPaymentInput) (*models.Payment, *models.ReceiptLog, error) {
	session, err := s.repos.POS.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !session.IsOpen() {
		return nil, nil, fmt.Errorf("%w: session is closed", ErrInvalidState)
	}
	if session.OpenedByID != input.RecordedByID {
		return nil, nil, fmt.Errorf("%w: session belongs to another cashier", ErrUnauthorized)
	}

	payment, err := s.paymentSvc.Record(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	var receipt *models.ReceiptLog
	err = s.db.Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		txn := &models.POSTransaction{
			POSSessionID:    session.ID,
			PaymentID:       &payment.ID,
			TransactionType: models.POSTransactionPayment,
			Amount:          payment.Amount,
			PaymentMethod:   payment.PaymentMethod,
		}
		if err := r.POS.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		seq, err := r.POS.NextReceiptSequence(ctx)
		if err != nil {
			return err
		}
		receipt = &models.ReceiptLog{
			ReceiptNumber:    models.FormatReceiptNumber(seq),
			POSTransactionID: txn.ID,
		}
		return r.POS.CreateReceipt(ctx, receipt)
	})
	if err != nil {
		logger.Error("receipt creation failed after payment", "payment_id", payment.ID, "session_id", session.ID, "error", err)
		return payment, nil, nil
	}

	return payment, receipt, nil
}

// RenderReceiptPDF renders a printable receipt and bumps its print count.
func (s *POSService) RenderReceiptPDF(ctx context.Context, receiptNumber string) ([]byte, string, error) {
	receipt, err := s.repos.POS.FindReceiptByNumber(ctx, receiptNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	var payment *models.Payment
	var loan *models.LoanApplication
	if receipt.Transaction.PaymentID != nil {
		payment, err = s.repos.Payment.FindByID(ctx, *receipt.Transaction.PaymentID)
		if err != nil {
			return nil, "", err
		}
		loan, err = s.repos.Loan.FindByID(ctx, payment.LoanApplicationID)
		if err != nil {
			return nil, "", err
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "MotoFin Payment Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Receipt number:")
	pdf.Cell(60, 8, receipt.ReceiptNumber)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Issued:")
	pdf.Cell(60, 8, receipt.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(6)

	if payment != nil {
		pdf.Cell(60, 8, "Customer:")
		pdf.Cell(60, 8, loan.ApplicantFullName())
		pdf.Ln(6)

		pdf.Cell(60, 8, "Installment:")
		pdf.Cell(60, 8, fmt.Sprintf("#%d", payment.Schedule.Sequence))
		pdf.Ln(6)

		pdf.Cell(60, 8, "Amount:")
		pdf.Cell(60, 8, payment.Amount.StringFixed(2))
		pdf.Ln(6)

		pdf.Cell(60, 8, "Method:")
		pdf.Cell(60, 8, payment.PaymentMethod)
		pdf.Ln(6)

		if payment.Reference != "" {
			pdf.Cell(60, 8, "Reference:")
			pdf.Cell(60, 8, payment.Reference)
			pdf.Ln(6)
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(120, 6, "Thank you for your payment.")

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	receipt.MarkPrinted(time.Now())
	if err := s.repos.POS.UpdateReceipt(ctx, receipt); err != nil {
		logger.Error("failed to record receipt print", "receipt", receipt.ReceiptNumber, "error", err)
	}

	filename := fmt.Sprintf("%s.pdf", receipt.ReceiptNumber)
	return buf.Bytes(), filename, nil
}

// GetSession returns a session with its transactions
func (s *POSService) GetSession(ctx context.Context, id uint) (*models.POSSession, error) {
	session, err := s.repos.POS.FindSessionWithTransactions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

// ListSessions returns sessions matching the query
func (s *POSService) ListSessions(ctx context.Context, query *repository.ListQuery) ([]models.POSSession, int64, error) {
	return s.repos.POS.ListSessions(ctx, query)
}

package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motofin/motofin-api/internal/models"
)

// POSRepository defines the interface for point-of-sale data access
type POSRepository interface {
	FindSessionByID(ctx context.Context, id uint) (*models.POSSession, error)
	FindSessionWithTransactions(ctx context.Context, id uint) (*models.POSSession, error)
	FindOpenSessionByUser(ctx context.Context, userID uint) (*models.POSSession, error)
	CreateSession(ctx context.Context, session *models.POSSession) error
	UpdateSession(ctx context.Context, session *models.POSSession) error
	ListSessions(ctx context.Context, query *ListQuery) ([]models.POSSession, int64, error)

	CreateTransaction(ctx context.Context, txn *models.POSTransaction) error

	CreateReceipt(ctx context.Context, receipt *models.ReceiptLog) error
	UpdateReceipt(ctx context.Context, receipt *models.ReceiptLog) error
	FindReceiptByNumber(ctx context.Context, number string) (*models.ReceiptLog, error)
	// NextReceiptSequence reserves the next receipt number. Backed by a
	// database sequence so concurrent terminals never collide.
	NextReceiptSequence(ctx context.Context) (int64, error)
}

type posRepository struct {
	db *gorm.DB
}

// NewPOSRepository creates a new point-of-sale repository
func NewPOSRepository(db *gorm.DB) POSRepository {
	return &posRepository{db: db}
}

func (r *posRepository) FindSessionByID(ctx context.Context, id uint) (*models.POSSession, error) {
	var session models.POSSession
	err := r.db.WithContext(ctx).Preload("OpenedBy").First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *posRepository) FindSessionWithTransactions(ctx context.Context, id uint) (*models.POSSession, error) {
	var session models.POSSession
	err := r.db.WithContext(ctx).
		Preload("OpenedBy").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Transactions.Payment").
		First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *posRepository) FindOpenSessionByUser(ctx context.Context, userID uint) (*models.POSSession, error) {
	var session models.POSSession
	err := r.db.WithContext(ctx).
		Where("opened_by_id = ? AND status = ?", userID, models.POSSessionOpen).
		Order("opened_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *posRepository) CreateSession(ctx context.Context, session *models.POSSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *posRepository) UpdateSession(ctx context.Context, session *models.POSSession) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(session).Error
}

func (r *posRepository) ListSessions(ctx context.Context, query *ListQuery) ([]models.POSSession, int64, error) {
	var sessions []models.POSSession
	var total int64

	db := r.db.WithContext(ctx).Model(&models.POSSession{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order("opened_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("OpenedBy").Preload("Transactions").Find(&sessions).Error
	return sessions, total, err
}

func (r *posRepository) CreateTransaction(ctx context.Context, txn *models.POSTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *posRepository) CreateReceipt(ctx context.Context, receipt *models.ReceiptLog) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *posRepository) UpdateReceipt(ctx context.Context, receipt *models.ReceiptLog) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

func (r *posRepository) FindReceiptByNumber(ctx context.Context, number string) (*models.ReceiptLog, error) {
	var receipt models.ReceiptLog
	err := r.db.WithContext(ctx).
		Preload("Transaction").
		Preload("Transaction.Payment").
		Where("receipt_number = ?", number).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *posRepository) NextReceiptSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval('receipt_number_seq')").
		Scan(&seq).Error
	return seq, err
}

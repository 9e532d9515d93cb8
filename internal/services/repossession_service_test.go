package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
)

type mockRepossessionRepo struct {
	repository.RepossessionRepository
	byLoan   *models.RepossessionCase
	byID     *models.RepossessionCase
	created  *models.RepossessionCase
	updated  *models.RepossessionCase
	appended []models.RepossessionEvent
}

func (m *mockRepossessionRepo) FindByLoan(ctx context.Context, loanID uint) (*models.RepossessionCase, error) {
	if m.byLoan == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.byLoan, nil
}

func (m *mockRepossessionRepo) FindByID(ctx context.Context, id uint) (*models.RepossessionCase, error) {
	if m.byID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.byID, nil
}

func (m *mockRepossessionRepo) Create(ctx context.Context, repoCase *models.RepossessionCase) error {
	repoCase.ID = 99
	m.created = repoCase
	m.byLoan = repoCase
	return nil
}

func (m *mockRepossessionRepo) Update(ctx context.Context, repoCase *models.RepossessionCase) error {
	m.updated = repoCase
	return nil
}

func (m *mockRepossessionRepo) AppendEvents(ctx context.Context, events []models.RepossessionEvent) error {
	m.appended = append(m.appended, events...)
	return nil
}

type mockMotorRepo struct {
	repository.MotorRepository
	motor *models.Motor
}

func (m *mockMotorRepo) FindByID(ctx context.Context, id uint) (*models.Motor, error) {
	return m.motor, nil
}

type mockStockRepo struct {
	repository.StockRepository
	stock   *models.Stock
	updated bool
}

func (m *mockStockRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Stock, error) {
	return m.stock, nil
}

func (m *mockStockRepo) Update(ctx context.Context, stock *models.Stock) error {
	m.updated = true
	return nil
}

func repossessionTestLoan() *models.LoanApplication {
	return &models.LoanApplication{
		ID:                 1,
		MotorID:            4,
		ApplicantFirstName: "Ana",
		ApplicantLastName:  "Reyes",
	}
}

func TestSyncForLoanOpensWarningCase(t *testing.T) {
	cases := &mockRepossessionRepo{}
	repos := &repository.Repositories{
		Repossession: cases,
		Schedule:     &mockScheduleRepo{overdueCount: 1, overdueAmount: decimal.RequireFromString("4133.33")},
	}
	svc := NewRepossessionService(repos, nil, nil)

	err := svc.SyncForLoan(context.Background(), repos, repossessionTestLoan())
	assert.NoError(t, err)
	assert.NotNil(t, cases.created)
	assert.Equal(t, models.RepossessionStatusWarning, cases.created.Status)
	assert.Equal(t, 1, cases.created.OverdueInstallments)
	assert.Equal(t, "4133.33", cases.created.TotalOverdueAmount.StringFixed(2))
	assert.Len(t, cases.appended, 2)
	assert.Contains(t, cases.appended[0].Description, "Case opened")
	assert.Equal(t, models.RepossessionEventSystem, cases.appended[1].EventType)
}

func TestSyncForLoanEscalatesAtThreshold(t *testing.T) {
	repoCase := &models.RepossessionCase{
		ID:                  5,
		LoanApplicationID:   1,
		Status:              models.RepossessionStatusWarning,
		OverdueInstallments: 1,
		TotalOverdueAmount:  decimal.RequireFromString("4133.33"),
	}
	cases := &mockRepossessionRepo{byLoan: repoCase}
	schedule := &mockScheduleRepo{overdueCount: 2, overdueAmount: decimal.RequireFromString("8266.66")}
	repos := &repository.Repositories{Repossession: cases, Schedule: schedule}
	svc := NewRepossessionService(repos, nil, nil)

	err := svc.SyncForLoan(context.Background(), repos, repossessionTestLoan())
	assert.NoError(t, err)
	assert.Equal(t, models.RepossessionStatusActive, repoCase.Status)
	assert.Len(t, cases.appended, 2)
	assert.Equal(t, "Status changed from Warning to Active case", cases.appended[0].Description)
	assert.Equal(t, models.RepossessionEventSystem, cases.appended[1].EventType)

	// A third overdue installment grows the counters but never re-escalates
	cases.appended = nil
	schedule.overdueCount = 3
	schedule.overdueAmount = decimal.RequireFromString("12399.99")

	err = svc.SyncForLoan(context.Background(), repos, repossessionTestLoan())
	assert.NoError(t, err)
	assert.Equal(t, models.RepossessionStatusActive, repoCase.Status)
	assert.Len(t, cases.appended, 1)
	assert.Equal(t, models.RepossessionEventSystem, cases.appended[0].EventType)
}

func TestSyncForLoanRecoversAndRestoresStock(t *testing.T) {
	repoCase := &models.RepossessionCase{
		ID:                  5,
		LoanApplicationID:   1,
		Status:              models.RepossessionStatusActive,
		OverdueInstallments: 2,
		TotalOverdueAmount:  decimal.RequireFromString("8266.66"),
	}
	cases := &mockRepossessionRepo{byLoan: repoCase}
	stockID := uint(8)
	stocks := &mockStockRepo{stock: &models.Stock{ID: stockID, QuantitySold: 1}}
	repos := &repository.Repositories{
		Repossession: cases,
		Schedule:     &mockScheduleRepo{overdueCount: 0, overdueAmount: decimal.Zero},
		Motor:        &mockMotorRepo{motor: &models.Motor{ID: 4, StockID: &stockID}},
		Stock:        stocks,
	}
	svc := NewRepossessionService(repos, nil, nil)

	err := svc.SyncForLoan(context.Background(), repos, repossessionTestLoan())
	assert.NoError(t, err)
	assert.Equal(t, models.RepossessionStatusRecovered, repoCase.Status)
	assert.Equal(t, 0, repoCase.OverdueInstallments)
	assert.Equal(t, "0.00", repoCase.TotalOverdueAmount.StringFixed(2))
	assert.NotNil(t, repoCase.ClosedAt)

	assert.True(t, stocks.updated)
	assert.Equal(t, 1, stocks.stock.QuantityAvailable)
	assert.Equal(t, 0, stocks.stock.QuantitySold)

	assert.Len(t, cases.appended, 2)
	assert.Equal(t, "Status changed from Active case to Recovered", cases.appended[0].Description)
}

func TestSyncForLoanRecoverySurvivesStockFailure(t *testing.T) {
	repoCase := &models.RepossessionCase{
		ID:                  5,
		LoanApplicationID:   1,
		Status:              models.RepossessionStatusReminder,
		OverdueInstallments: 1,
		TotalOverdueAmount:  decimal.RequireFromString("4133.33"),
	}
	cases := &mockRepossessionRepo{byLoan: repoCase}
	repos := &repository.Repositories{
		Repossession: cases,
		Schedule:     &mockScheduleRepo{overdueCount: 0, overdueAmount: decimal.Zero},
		Motor:        &mockMotorRepo{motor: &models.Motor{ID: 4}},
	}
	svc := NewRepossessionService(repos, nil, nil)

	err := svc.SyncForLoan(context.Background(), repos, repossessionTestLoan())
	assert.NoError(t, err)
	assert.Equal(t, models.RepossessionStatusRecovered, repoCase.Status)
	assert.Len(t, cases.appended, 3)
	assert.Contains(t, cases.appended[2].Description, "Stock restoration failed")
}

func TestSyncForLoanLeavesClosedCaseAlone(t *testing.T) {
	repoCase := &models.RepossessionCase{ID: 5, LoanApplicationID: 1, Status: models.RepossessionStatusClosed}
	cases := &mockRepossessionRepo{byLoan: repoCase}
	repos := &repository.Repositories{
		Repossession: cases,
		Schedule:     &mockScheduleRepo{overdueCount: 0, overdueAmount: decimal.Zero},
	}
	svc := NewRepossessionService(repos, nil, nil)

	err := svc.SyncForLoan(context.Background(), repos, repossessionTestLoan())
	assert.NoError(t, err)
	assert.Nil(t, cases.updated)
	assert.Empty(t, cases.appended)
}

func TestRecordReminderMarksOpenCase(t *testing.T) {
	repoCase := &models.RepossessionCase{ID: 5, LoanApplicationID: 1, Status: models.RepossessionStatusActive}
	cases := &mockRepossessionRepo{byID: repoCase}
	repos := &repository.Repositories{Repossession: cases}
	svc := NewRepossessionService(repos, nil, nil)

	result, err := svc.RecordReminder(context.Background(), 5, "please settle installment 3", 7)
	assert.NoError(t, err)
	assert.Equal(t, models.RepossessionStatusReminder, result.Status)
	assert.NotNil(t, result.LastReminderSentAt)
	assert.Len(t, cases.appended, 2)
	assert.Equal(t, models.RepossessionEventStatus, cases.appended[0].EventType)
	assert.Equal(t, models.RepossessionEventReminder, cases.appended[1].EventType)
}

func TestRecordReminderRejectsClosedCase(t *testing.T) {
	for _, status := range []string{models.RepossessionStatusRecovered, models.RepossessionStatusClosed} {
		repoCase := &models.RepossessionCase{ID: 5, LoanApplicationID: 1, Status: status}
		cases := &mockRepossessionRepo{byID: repoCase}
		repos := &repository.Repositories{Repossession: cases}
		svc := NewRepossessionService(repos, nil, nil)

		result, err := svc.RecordReminder(context.Background(), 5, "hello", 7)
		assert.Nil(t, result, "status %s", status)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, status, repoCase.Status)
		assert.Empty(t, cases.appended)
	}
}

func TestCloseCaseFromRecovered(t *testing.T) {
	repoCase := &models.RepossessionCase{ID: 5, LoanApplicationID: 1, Status: models.RepossessionStatusRecovered}
	cases := &mockRepossessionRepo{byID: repoCase}
	repos := &repository.Repositories{Repossession: cases}
	svc := NewRepossessionService(repos, nil, nil)

	result, err := svc.CloseCase(context.Background(), 5, "unit returned to dealer", 3)
	assert.NoError(t, err)
	assert.Equal(t, models.RepossessionStatusClosed, result.Status)
	assert.Equal(t, "unit returned to dealer", result.ResolutionNotes)
	assert.Len(t, cases.appended, 2)
}

func TestCloseCaseIdempotent(t *testing.T) {
	repoCase := &models.RepossessionCase{
		ID:                5,
		LoanApplicationID: 1,
		Status:            models.RepossessionStatusClosed,
		ResolutionNotes:   "unit returned to dealer",
	}
	cases := &mockRepossessionRepo{byID: repoCase}
	repos := &repository.Repositories{Repossession: cases}
	svc := NewRepossessionService(repos, nil, nil)

	result, err := svc.CloseCase(context.Background(), 5, "different notes", 3)
	assert.NoError(t, err)
	assert.Equal(t, "unit returned to dealer", result.ResolutionNotes)
	assert.Nil(t, cases.updated)
	assert.Empty(t, cases.appended)
}

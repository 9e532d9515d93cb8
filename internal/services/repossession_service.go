package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/jobs"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
	"github.com/motofin/motofin-api/internal/statemachine"
	"github.com/motofin/motofin-api/pkg/logger"
)

// RepossessionService keeps repossession cases synchronized with each
// loan's overdue schedule lines and drives the collector workflow.
type RepossessionService struct {
	repos    *repository.Repositories
	emailSvc *EmailService
	worker   *jobs.Worker
}

// NewRepossessionService creates a new repossession service
func NewRepossessionService(repos *repository.Repositories, emailSvc *EmailService, worker *jobs.Worker) *RepossessionService {
	return &RepossessionService{
		repos:    repos,
		emailSvc: emailSvc,
		worker:   worker,
	}
}

// SyncForLoan re-derives the loan's case from its current overdue metrics,
// against the given repository set so the payment cascade stays atomic.
// Zero overdue lines recovers any open case; otherwise the case is created
// or updated and escalated as needed. Every change lands on the event
// timeline.
func (s *RepossessionService) SyncForLoan(ctx context.Context, r *repository.Repositories, loan *models.LoanApplication) error {
	overdueCount, totalOverdue, err := r.Schedule.OverdueMetrics(ctx, loan.ID)
	if err != nil {
		return err
	}

	if overdueCount == 0 {
		return s.recoverIfOpen(ctx, r, loan)
	}

	repoCase, err := r.Repossession.FindByLoan(ctx, loan.ID)
	created := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		repoCase = &models.RepossessionCase{
			LoanApplicationID: loan.ID,
			Status:            models.RepossessionStatusWarning,
		}
		if err := r.Repossession.Create(ctx, repoCase); err != nil {
			return err
		}
		created = true
	}

	var events []models.RepossessionEvent
	if created {
		events = append(events, models.RepossessionEvent{
			RepossessionCaseID: repoCase.ID,
			EventType:          models.RepossessionEventSystem,
			Description:        fmt.Sprintf("Case opened for %s", loan.ApplicantFullName()),
		})
		logger.Warn("repossession case opened", "loan_id", loan.ID, "overdue_installments", overdueCount)
	}

	changed := repoCase.ApplyMetrics(overdueCount, totalOverdue)
	if repoCase.ShouldEscalate() {
		from := repoCase.Status
		machine := statemachine.NewRepossessionFSM(repoCase)
		if err := machine.Escalate(ctx); err != nil {
			return err
		}
		events = append(events, repoCase.StatusChangeEvent(from, nil))
		changed = true
		logger.Warn("repossession case escalated", "loan_id", loan.ID, "overdue_installments", overdueCount)
	}
	if changed {
		events = append(events, repoCase.MetricsEvent())
	}

	if err := r.Repossession.Update(ctx, repoCase); err != nil {
		return err
	}
	return r.Repossession.AppendEvents(ctx, events)
}

// recoverIfOpen transitions an open case to recovered and returns one stock
// unit to the floor. A stock restoration failure is recorded on the
// timeline but never fails the recovery.
func (s *RepossessionService) recoverIfOpen(ctx context.Context, r *repository.Repositories, loan *models.LoanApplication) error {
	repoCase, err := r.Repossession.FindByLoan(ctx, loan.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !repoCase.IsOpen() {
		return nil
	}

	from := repoCase.Status
	machine := statemachine.NewRepossessionFSM(repoCase)
	if err := machine.Recover(ctx); err != nil {
		return err
	}
	events := []models.RepossessionEvent{
		repoCase.StatusChangeEvent(from, nil),
		repoCase.NoteRecovered(nil, time.Now()),
	}

	if err := s.restoreStockUnit(ctx, r, loan); err != nil {
		events = append(events, models.RepossessionEvent{
			RepossessionCaseID: repoCase.ID,
			EventType:          models.RepossessionEventSystem,
			Description:        fmt.Sprintf("Stock restoration failed: %v", err),
		})
		logger.Error("stock restoration failed on recovery", "loan_id", loan.ID, "error", err)
	}

	if err := r.Repossession.Update(ctx, repoCase); err != nil {
		return err
	}
	return r.Repossession.AppendEvents(ctx, events)
}

func (s *RepossessionService) restoreStockUnit(ctx context.Context, r *repository.Repositories, loan *models.LoanApplication) error {
	motor, err := r.Motor.FindByID(ctx, loan.MotorID)
	if err != nil {
		return err
	}
	if motor.StockID == nil {
		return fmt.Errorf("motor %d has no stock batch", motor.ID)
	}

	stock, err := r.Stock.FindByIDForUpdate(ctx, *motor.StockID)
	if err != nil {
		return err
	}
	if err := stock.IncreaseAvailable(1); err != nil {
		return err
	}
	return r.Stock.Update(ctx, stock)
}

// RecordReminder marks a reminder on an open case and emails the applicant
// in the background.
func (s *RepossessionService) RecordReminder(ctx context.Context, caseID uint, message string, actorID uint) (*models.RepossessionCase, error) {
	repoCase, err := s.repos.Repossession.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	from := repoCase.Status
	machine := statemachine.NewRepossessionFSM(repoCase)
	if err := machine.Remind(ctx); err != nil {
		return nil, fmt.Errorf("%w: case is %s", ErrInvalidState, repoCase.Status)
	}

	var events []models.RepossessionEvent
	if from != models.RepossessionStatusReminder {
		events = append(events, repoCase.StatusChangeEvent(from, &actorID))
	}
	events = append(events, repoCase.NoteReminder(message, &actorID, time.Now()))

	if err := s.repos.Repossession.Update(ctx, repoCase); err != nil {
		return nil, err
	}
	if err := s.repos.Repossession.AppendEvents(ctx, events); err != nil {
		return nil, err
	}

	loan := repoCase.LoanApplication
	if loan.ApplicantEmail != "" {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.emailSvc.SendOverdueReminder(ctx, &loan, repoCase, message)
		})
	}

	return repoCase, nil
}

// CloseCase finalizes a case with resolution notes. Closing an already
// closed case is a no-op.
func (s *RepossessionService) CloseCase(ctx context.Context, caseID uint, notes string, actorID uint) (*models.RepossessionCase, error) {
	repoCase, err := s.repos.Repossession.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if repoCase.Status == models.RepossessionStatusClosed {
		return repoCase, nil
	}

	from := repoCase.Status
	machine := statemachine.NewRepossessionFSM(repoCase)
	if err := machine.Close(ctx); err != nil {
		return nil, err
	}
	events := []models.RepossessionEvent{
		repoCase.StatusChangeEvent(from, &actorID),
		repoCase.NoteClosed(notes, &actorID, time.Now()),
	}

	if err := s.repos.Repossession.Update(ctx, repoCase); err != nil {
		return nil, err
	}
	if err := s.repos.Repossession.AppendEvents(ctx, events); err != nil {
		return nil, err
	}
	return repoCase, nil
}

// FindByID gets a case with its loan preloaded
func (s *RepossessionService) FindByID(ctx context.Context, id uint) (*models.RepossessionCase, error) {
	repoCase, err := s.repos.Repossession.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return repoCase, nil
}

// FindByIDWithEvents gets a case with its full timeline
func (s *RepossessionService) FindByIDWithEvents(ctx context.Context, id uint) (*models.RepossessionCase, error) {
	repoCase, err := s.repos.Repossession.FindByIDWithEvents(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return repoCase, nil
}

// List returns cases matching the query
func (s *RepossessionService) List(ctx context.Context, query *repository.ListQuery) ([]models.RepossessionCase, int64, error) {
	return s.repos.Repossession.List(ctx, query)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/jobs"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
)

// UserService handles staff account management
type UserService struct {
	repos    *repository.Repositories
	worker   *jobs.Worker
	emailSvc *EmailService
	auditSvc *AuditService
}

// NewUserService creates a new user service
func NewUserService(repos *repository.Repositories, worker *jobs.Worker, emailSvc *EmailService, auditSvc *AuditService) *UserService {
	return &UserService{repos: repos, worker: worker, emailSvc: emailSvc, auditSvc: auditSvc}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repos.User.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repos.User.List(ctx, query)
}

var validRoles = map[string]bool{
	models.RoleAdmin:     true,
	models.RoleManager:   true,
	models.RoleCashier:   true,
	models.RoleCollector: true,
}

// Create registers a staff account. The welcome email is best-effort and
// never fails the creation.
func (s *UserService) Create(ctx context.Context, user *models.User, password string, actorID uint) error {
	var verrs ValidationErrors
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		verrs = append(verrs, ValidationError{Field: "email", Message: "is required"})
	}
	if user.FullName == "" {
		verrs = append(verrs, ValidationError{Field: "full_name", Message: "is required"})
	}
	if len(password) < 8 {
		verrs = append(verrs, ValidationError{Field: "password", Message: "must be at least 8 characters"})
	}
	if user.Role != "" && !validRoles[user.Role] {
		verrs = append(verrs, ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", user.Role)})
	}
	if len(verrs) > 0 {
		return verrs
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashed

	if err := s.repos.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: email is already registered", ErrDuplicate)
		}
		return err
	}

	created := *user
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailSvc.SendAccountCreated(ctx, &created)
	})

	return s.auditSvc.Log(ctx, actorID, models.AuditActionCreate, "User", user.ID,
		fmt.Sprintf("User created: %s (%s), role %s", user.FullName, user.Email, user.Role), "", "")
}

func (s *UserService) Update(ctx context.Context, user *models.User, actorID uint) error {
	if err := s.repos.User.Update(ctx, user); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, models.AuditActionUpdate, "User", user.ID,
		fmt.Sprintf("User updated: %s", user.Email), "", "")
}

// ToggleStatus flips an account between active and inactive.
func (s *UserService) ToggleStatus(ctx context.Context, id uint, actorID uint) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserStatusActive {
		user.Status = models.UserStatusInactive
	} else {
		user.Status = models.UserStatusActive
	}
	if err := s.repos.User.Update(ctx, user); err != nil {
		return nil, err
	}
	s.auditSvc.Log(ctx, actorID, models.AuditActionUpdate, "User", id,
		fmt.Sprintf("Status changed to %s", user.Status), "", "")
	return user, nil
}

// ChangePassword lets a user rotate their own password.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(currentPassword, user.EncryptedPassword) {
		return ErrInvalidPassword
	}
	if len(newPassword) < 8 {
		return &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashed
	if err := s.repos.User.Update(ctx, user); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, userID, models.AuditActionUpdate, "User", userID, "Password changed", "", "")
}

// ResetPassword sets a new password without knowing the old one. Admin only.
func (s *UserService) ResetPassword(ctx context.Context, userID uint, newPassword string, actorID uint) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashed
	if err := s.repos.User.Update(ctx, user); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, models.AuditActionUpdate, "User", userID, "Password reset by administrator", "", "")
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/motofin/motofin-api/internal/config"
	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/internal/repository"
)

// mockUserRepo embeds the interface so only the methods under test need
// implementations.
type mockUserRepo struct {
	repository.UserRepository
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
	mockFindByID    func(ctx context.Context, id uint) (*models.User, error)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.mockFindByEmail(ctx, email)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

type mockRefreshTokenRepo struct {
	repository.RefreshTokenRepository
	mockFindByToken func(ctx context.Context, token string) (*models.RefreshToken, error)
	created         []*models.RefreshToken
	deleted         []string
}

func (m *mockRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return m.mockFindByToken(ctx, token)
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, rt *models.RefreshToken) error {
	m.created = append(m.created, rt)
	return nil
}

func (m *mockRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 24,
	}
}

func activeTestUser(t *testing.T) *models.User {
	hash, err := HashPassword("correct-horse")
	assert.NoError(t, err)
	return &models.User{
		ID:                1,
		Email:             "cashier@motofin.test",
		FullName:          "Test Cashier",
		Role:              models.RoleCashier,
		Status:            models.UserStatusActive,
		EncryptedPassword: hash,
	}
}

func TestLoginSuccess(t *testing.T) {
	user := activeTestUser(t)
	tokens := &mockRefreshTokenRepo{}
	svc := NewAuthService(&repository.Repositories{
		User: &mockUserRepo{
			mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
				assert.Equal(t, "cashier@motofin.test", email)
				return user, nil
			},
		},
		RefreshToken: tokens,
	}, authTestConfig())

	result, err := svc.Login(context.Background(), "  cashier@motofin.test ", "correct-horse")
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "cashier@motofin.test", result.User.Email)

	assert.Len(t, tokens.created, 1)
	assert.Equal(t, result.RefreshToken, tokens.created[0].Token)
	assert.Equal(t, user.ID, tokens.created[0].UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeTestUser(t)
	svc := NewAuthService(&repository.Repositories{
		User: &mockUserRepo{
			mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
				return user, nil
			},
		},
		RefreshToken: &mockRefreshTokenRepo{},
	}, authTestConfig())

	result, err := svc.Login(context.Background(), "cashier@motofin.test", "wrong")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestLoginUnknownEmailFailsUniformly(t *testing.T) {
	svc := NewAuthService(&repository.Repositories{
		User: &mockUserRepo{
			mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
		},
		RefreshToken: &mockRefreshTokenRepo{},
	}, authTestConfig())

	// Same error as a wrong password so the response never reveals whether
	// the account exists
	result, err := svc.Login(context.Background(), "nobody@motofin.test", "whatever")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeTestUser(t)
	user.Status = models.UserStatusSuspended
	svc := NewAuthService(&repository.Repositories{
		User: &mockUserRepo{
			mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
				return user, nil
			},
		},
		RefreshToken: &mockRefreshTokenRepo{},
	}, authTestConfig())

	result, err := svc.Login(context.Background(), "cashier@motofin.test", "correct-horse")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshTokenRotation(t *testing.T) {
	user := activeTestUser(t)
	expiresAt := time.Now().Add(24 * time.Hour)
	tokens := &mockRefreshTokenRepo{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			if token != "old-token" {
				return nil, gorm.ErrRecordNotFound
			}
			return &models.RefreshToken{UserID: user.ID, Token: "old-token", ExpiresAt: &expiresAt}, nil
		},
	}
	svc := NewAuthService(&repository.Repositories{
		User: &mockUserRepo{
			mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
				return user, nil
			},
		},
		RefreshToken: tokens,
	}, authTestConfig())

	result, err := svc.RefreshToken(context.Background(), "old-token")
	assert.NoError(t, err)
	assert.NotEqual(t, "old-token", result.RefreshToken)
	assert.Contains(t, tokens.deleted, "old-token")
	assert.Len(t, tokens.created, 1)
	assert.Equal(t, result.RefreshToken, tokens.created[0].Token)
}

func TestRefreshTokenExpired(t *testing.T) {
	expiresAt := time.Now().Add(-time.Hour)
	tokens := &mockRefreshTokenRepo{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			return &models.RefreshToken{UserID: 1, Token: token, ExpiresAt: &expiresAt}, nil
		},
	}
	svc := NewAuthService(&repository.Repositories{
		User:         &mockUserRepo{},
		RefreshToken: tokens,
	}, authTestConfig())

	result, err := svc.RefreshToken(context.Background(), "stale-token")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, tokens.deleted, "stale-token")
}

func TestRefreshTokenUnknown(t *testing.T) {
	svc := NewAuthService(&repository.Repositories{
		User: &mockUserRepo{},
		RefreshToken: &mockRefreshTokenRepo{
			mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
				return nil, gorm.ErrRecordNotFound
			},
		},
	}, authTestConfig())

	result, err := svc.RefreshToken(context.Background(), "forged")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	assert.NoError(t, err)
	assert.True(t, VerifyPassword("secret-pass", hash))
	assert.False(t, VerifyPassword("not-it", hash))
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
)

type authUserRepoStub struct {
	users          map[string]*models.User
	lastLoginCalls int
	passwordCalls  int
}

func (s *authUserRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authUserRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *authUserRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	s.lastLoginCalls++
	return nil
}

func (s *authUserRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	s.passwordCalls++
	if u, ok := s.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour, Issuer: "sia-validation-api"}
}

func newAuthFixture(t *testing.T) (*AuthService, *authUserRepoStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &authUserRepoStub{users: map[string]*models.User{
		"user-1": {
			ID:           "user-1",
			Email:        "admin@school.test",
			PasswordHash: string(hash),
			FullName:     "Admin One",
			Role:         models.RoleAdmin,
			Active:       true,
		},
	}}
	return NewAuthService(repo, nil, nil, testAuthConfig()), repo
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Equal(t, 1, repo.lastLoginCalls)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin@school.test", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@school.test", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.users["user-1"].Active = false
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsMalformedPayload(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestChangePassword(t *testing.T) {
	svc, repo := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "correct-horse",
		NewPassword: "battery-staple",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.passwordCalls)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "battery-staple"})
	require.NoError(t, err)
}

func TestChangePasswordOldMismatch(t *testing.T) {
	svc, _ := newAuthFixture(t)
	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "battery-staple",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, _ := newAuthFixture(t)
	other := NewAuthService(&authUserRepoStub{users: map[string]*models.User{}}, nil, nil, AuthConfig{
		TokenSecret: "other-secret",
		TokenExpiry: time.Hour,
	})
	token, err := other.generateAccessToken(&models.User{ID: "user-9", Email: "x@school.test", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenExpiry = -time.Minute
	svc := NewAuthService(&authUserRepoStub{users: map[string]*models.User{}}, nil, nil, cfg)
	token, err := svc.generateAccessToken(&models.User{ID: "user-1", Email: "admin@school.test", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

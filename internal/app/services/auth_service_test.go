package services

import (
	"context"
	"testing"
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	svc    AuthService
}

func newAuthFixture() *authFixture {
	users, tokens := newFakeUserRepo(), newFakeTokenRepo()
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "portal-test",
	})
	return &authFixture{
		users:  users,
		tokens: tokens,
		svc:    NewAuthService(users, tokens, jwt, newFakeStorage().URL, testLogger),
	}
}

func TestLoginIssuesTokensAndStampsLastLogin(t *testing.T) {
	f := newAuthFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "rosa", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, rosa.ID, resp.User.ID)
	assert.Equal(t, 1, f.tokens.live(rosa.ID))

	stored, _ := f.users.GetByID(context.Background(), rosa.ID)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestAuthenticateRejections(t *testing.T) {
	f := newAuthFixture()
	f.users.add("rosa", models.RoleResident, "secreto123", true)
	f.users.add("luis", models.RoleResident, "secreto123", false)
	ctx := context.Background()

	_, err := f.svc.Authenticate(ctx, "rosa", "wrong-pass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Authenticate(ctx, "nobody", "secreto123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Disabled accounts are refused even with the right password.
	_, err = f.svc.Authenticate(ctx, "luis", "secreto123")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshTokenRotates(t *testing.T) {
	f := newAuthFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "rosa", Password: "secreto123"})
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(ctx, login.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Token.RefreshToken, refreshed.Token.RefreshToken)

	_, err = f.svc.RefreshToken(ctx, login.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = f.svc.RefreshToken(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	require.NoError(t, f.users.SetActive(ctx, rosa.ID, false))
	_, err = f.svc.RefreshToken(ctx, refreshed.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestLogoutIgnoresUnknownToken(t *testing.T) {
	f := newAuthFixture()
	rosa := f.users.add("rosa", models.RoleResident, "secreto123", true)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "rosa", Password: "secreto123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.Token.RefreshToken))
	assert.Equal(t, 0, f.tokens.live(rosa.ID))
	assert.NoError(t, f.svc.Logout(ctx, "never-issued"))
}

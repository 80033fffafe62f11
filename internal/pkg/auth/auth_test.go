package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "portal-test",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService()

	pair, err := svc.GenerateTokenPair(Subject{ID: 42, Username: "ana", Role: "vecino"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 900, pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "vecino", claims.Role)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.GenerateTokenPair(Subject{ID: 1, Username: "admin", Role: "admin"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute, TokenIssuer: "portal-test"})
	pair, err := other.GenerateTokenPair(Subject{ID: 1, Username: "x", Role: "vecino"})
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer abc.def", "abc.def", false},
		{"lower case scheme", "bearer abc.def", "abc.def", false},
		{"extra blanks", "  Bearer   abc.def  ", "abc.def", false},
		{"raw token", "abc.def", "abc.def", false},
		{"empty", "", "", true},
		{"scheme only", "Bearer", "", true},
		{"scheme with blanks", "Bearer   ", "", true},
		{"two tokens", "Bearer abc def", "", true},
		{"other scheme", "Basic dXNlcjpwYXNz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tok)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

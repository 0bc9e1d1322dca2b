package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domuser "example.com/storefront/internal/domain/user"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	token, err := svc.GenerateToken(&domuser.User{ID: 42, Name: "Test User", Email: "test@example.com"})
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "test@example.com", claims.Email)
	require.Equal(t, "Test User", claims.Name)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	token, err := svc.GenerateToken(&domuser.User{ID: 1})
	require.NoError(t, err)

	_, err = NewJWTService("other", time.Hour).ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTService("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.GenerateToken(&domuser.User{ID: 1})
	require.NoError(t, err)
	_, err = svc.ParseToken(old)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptService(t *testing.T) {
	svc := NewBcryptService(4)

	hash, err := svc.Hash("password")
	require.NoError(t, err)
	require.NotEqual(t, "password", hash)

	require.NoError(t, svc.Compare(hash, "password"))
	require.Error(t, svc.Compare(hash, "wrong"))
}

package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/security"
)

func TestTokenRoundTrip(t *testing.T) {
	mgr := security.NewTokenManager("test-secret")

	token, err := mgr.GenerateActorToken(100, domain.RoleRenter, time.Hour)
	assert.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), claims.UserID)
	assert.Equal(t, domain.RoleRenter, claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := security.NewTokenManager("secret-a").GenerateActorToken(100, domain.RoleOwner, time.Hour)
	assert.NoError(t, err)

	_, err = security.NewTokenManager("secret-b").ValidateToken(token)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	mgr := security.NewTokenManager("test-secret")
	token, err := mgr.GenerateActorToken(100, domain.RoleRenter, -time.Minute)
	assert.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.ErrorIs(t, err, security.ErrExpiredToken)
}

func TestTokenUnknownRoleRejected(t *testing.T) {
	mgr := security.NewTokenManager("test-secret")
	token, err := mgr.GenerateActorToken(100, domain.ActorRole("SUPERUSER"), time.Hour)
	assert.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenGarbageRejected(t *testing.T) {
	_, err := security.NewTokenManager("test-secret").ValidateToken("not-a-token")
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

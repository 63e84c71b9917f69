package jwthelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/events-api/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	const key = "test-signing-key"
	now := time.Now()

	token, err := GenerateToken(key, 42, domain.RoleStaff, now)
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, domain.RoleStaff, claims.Role)
}

func TestParseToken_WrongKey(t *testing.T) {
	token, err := GenerateToken("key-one", 42, domain.RoleStudent, time.Now())
	require.NoError(t, err)

	_, err = ParseToken("key-two", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("key", 42, domain.RoleStudent, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	_, err = ParseToken("key", token)
	assert.Error(t, err)
}

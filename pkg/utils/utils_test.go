package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameKey(t *testing.T) {
	assert.Equal(t, "alice", NameKey(" Alice "))
	assert.Equal(t, "jane smith", NameKey("Jane \t  SMITH"))
	assert.Equal(t, "", NameKey("   "))
	assert.Equal(t, NameKey(" Alice "), NameKey("alice"))
}

func TestNewNullString(t *testing.T) {
	assert.Nil(t, NewNullString("  "))
	got := NewNullString(" a@b.co ")
	require.NotNil(t, got)
	assert.Equal(t, "a@b.co", *got)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("Jane.Smith@Example.com"))
	assert.False(t, IsValidEmail("jane@"))
	assert.False(t, IsValidEmail("not an email"))
}

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("EDEN_TEST_INT", "42")
	t.Setenv("EDEN_TEST_BAD_INT", "forty")
	t.Setenv("EDEN_TEST_BOOL", "true")
	t.Setenv("EDEN_TEST_DURATION", "90s")
	t.Setenv("EDEN_TEST_LIST", " a, ,b ,")

	assert.Equal(t, "fallback", Getenv("EDEN_TEST_UNSET", "fallback"))
	assert.Equal(t, 42, GetenvInt("EDEN_TEST_INT", 1))
	assert.Equal(t, 1, GetenvInt("EDEN_TEST_BAD_INT", 1))
	assert.True(t, GetenvBool("EDEN_TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, GetenvDuration("EDEN_TEST_DURATION", time.Minute))
	assert.Equal(t, []string{"a", "b"}, GetenvList("EDEN_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, GetenvList("EDEN_TEST_UNSET", []string{"x"}))
}

func TestTokenManager(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)

	issued := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	manager, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)
	manager.now = func() time.Time { return issued }
	assert.Equal(t, time.Hour, manager.TTL())

	token, expiresAt, err := manager.GenerateAccessToken("frontdesk", "operator")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expiresAt)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "frontdesk", claims.Username)
	assert.Equal(t, "operator", claims.Role)

	other, err := NewTokenManager("another-secret", time.Hour)
	require.NoError(t, err)
	other.now = manager.now
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	manager.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}

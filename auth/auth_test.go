package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ablelink/invest-engine/invest"
)

func TestHashPIN_RoundTrip(t *testing.T) {
	hash, err := HashPIN("1234")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "1234", hash)

	assert.NoError(t, VerifyPIN(hash, "1234"))
	assert.ErrorIs(t, VerifyPIN(hash, "4321"), invest.ErrAuthentication)
}

func TestHashPIN_RejectsMalformedPINs(t *testing.T) {
	for _, pin := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		_, err := HashPIN(pin)
		assert.ErrorIs(t, err, invest.ErrValidation, "pin %q", pin)
	}
}

func TestVerifyPIN_NoStoredHashFailsClosed(t *testing.T) {
	assert.ErrorIs(t, VerifyPIN("", "1234"), invest.ErrAuthentication)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword(hash, "hunter22"))
	assert.ErrorIs(t, VerifyPassword(hash, "hunter23"), invest.ErrAuthentication)
	assert.ErrorIs(t, VerifyPassword("", "hunter22"), invest.ErrAuthentication)
}

func TestHashPassword_RejectsShortPasswords(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, invest.ErrValidation)
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(invest.UserProfile{ID: "user-1", Admin: true})
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.Admin)
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	a, _ := NewTokenIssuer("secret-a", time.Hour)
	b, _ := NewTokenIssuer("secret-b", time.Hour)

	token, err := a.Issue(invest.UserProfile{ID: "user-1"})
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, invest.ErrAuthentication)
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue(invest.UserProfile{ID: "user-1"})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, invest.ErrAuthentication)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, invest.ErrAuthentication)
}

func TestNewTokenIssuer_EmptySecretIsConfigurationError(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.ErrorIs(t, err, invest.ErrConfiguration)
}

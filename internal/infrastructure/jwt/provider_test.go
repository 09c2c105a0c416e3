package jwtinfra

import (
	"testing"
	"time"

	"github.com/go-puzzle-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	p, err := NewProvider("s3cret", time.Hour)
	require.NoError(t, err)

	tok, err := p.Sign("u1", "alice")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "u1", claims.Subject)
}

func TestVerify_Expired(t *testing.T) {
	p, err := NewProvider("s3cret", time.Hour)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := p.Sign("u1", "alice")
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_WrongSecret(t *testing.T) {
	a, _ := NewProvider("one", time.Hour)
	b, _ := NewProvider("two", time.Hour)
	tok, err := a.Sign("u1", "alice")
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	p, _ := NewProvider("s3cret", time.Hour)
	claims := Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_Garbage(t *testing.T) {
	p, _ := NewProvider("s3cret", time.Hour)
	_, err := p.Verify("not.a.jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewProvider_EmptySecret(t *testing.T) {
	_, err := NewProvider("", time.Hour)
	assert.Error(t, err)
}

package credcache

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClaims(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "https://issuer.example.com",
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := DecodeClaims(raw)
	require.NoError(t, err)

	assert.Equal(t, expiry.Unix(), claims.Exp)
	assert.Equal(t, "https://issuer.example.com", claims.Issuer)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestDecodeClaims_NoExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := DecodeClaims(raw)
	require.NoError(t, err)

	assert.Zero(t, claims.Exp)
}

func TestDecodeClaims_Malformed(t *testing.T) {
	_, err := DecodeClaims("not-a-jwt")

	assert.Error(t, err)
}

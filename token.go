package credcache

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// DecodeClaims extracts the registered claims from a compact JWT without
// verifying its signature. The cache is not a verifier: it only needs the
// token's exp claim to bound an entry's lifetime, and the token was already
// validated by whichever collaborator issued or accepted it.
func DecodeClaims(raw string) (*Claims, error) {
	var registered jwt.RegisteredClaims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &registered); err != nil {
		return nil, fmt.Errorf("decoding token claims: %w", err)
	}

	claims := &Claims{
		Issuer:  registered.Issuer,
		Subject: registered.Subject,
	}
	if registered.ExpiresAt != nil {
		claims.Exp = registered.ExpiresAt.Unix()
	}
	return claims, nil
}

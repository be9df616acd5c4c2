package credcache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Body is the persisted payload of a cache record. Exactly two variants
// exist: Credential, the full bundle produced by a token exchange, and
// RefreshOnly, an expired entry narrowed to its refresh token. Consumers
// type-switch over these.
type Body interface {
	body()
}

// Claims carries the decoded token claims the cache relies on. Exp is the
// token's own expiry in epoch seconds; the cache never trusts a self-reported
// TTL longer than it.
type Claims struct {
	Exp     int64  `json:"exp"`
	Issuer  string `json:"iss,omitempty"`
	Subject string `json:"sub,omitempty"`
}

// Credential is a credential bundle as issued by the token endpoint. It is
// immutable once handed to the Manager; the only mutation the cache ever
// performs is narrowing an expired copy to RefreshOnly.
type Credential struct {
	ClientID     string  `json:"client_id"`
	Audience     string  `json:"audience"`
	Scope        string  `json:"scope"`
	ExpiresIn    int64   `json:"expires_in"`
	AccessToken  string  `json:"access_token,omitempty"`
	IDToken      string  `json:"id_token,omitempty"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	Claims       *Claims `json:"claims,omitempty"`
}

func (*Credential) body() {}

// Key derives the canonical cache key for the credential.
func (c *Credential) Key() Key {
	return NewKey(c.ClientID, c.Audience, c.Scope)
}

// RefreshOnly is what remains of an expired credential that carried a
// refresh token: the stale access token is discarded, the refresh capability
// kept.
type RefreshOnly struct {
	RefreshToken string `json:"refresh_token"`
}

func (*RefreshOnly) body() {}

// refreshToken returns the refresh token held by either body variant, or ""
// when there is none.
func refreshToken(b Body) string {
	switch v := b.(type) {
	case *Credential:
		return v.RefreshToken
	case *RefreshOnly:
		return v.RefreshToken
	}
	return ""
}

// WrappedEntry is the persisted envelope: a body plus the absolute expiry
// (epoch seconds) the Manager enforces on read.
type WrappedEntry struct {
	Body      Body
	ExpiresAt int64
}

// wrap pairs a credential with its effective expiry: the sooner of
// now+expires_in and the token's own exp claim. The claim cap is skipped
// only when no claims were supplied.
func wrap(c *Credential, now time.Time) WrappedEntry {
	expiresAt := now.Unix() + c.ExpiresIn
	if c.Claims != nil && c.Claims.Exp < expiresAt {
		expiresAt = c.Claims.Exp
	}
	return WrappedEntry{Body: c, ExpiresAt: expiresAt}
}

type wireEntry struct {
	Body      json.RawMessage `json:"body"`
	ExpiresAt int64           `json:"expiresAt"`
}

func (w WrappedEntry) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(w.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEntry{Body: body, ExpiresAt: w.ExpiresAt})
}

// UnmarshalJSON decodes the envelope, discriminating the body variant
// structurally: a body without a client_id but with a refresh_token is a
// narrowed RefreshOnly record. A Credential always carries its client_id, as
// the cache key is derived from it.
func (w *WrappedEntry) UnmarshalJSON(data []byte) error {
	var wire wireEntry
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var cred Credential
	if err := json.Unmarshal(wire.Body, &cred); err != nil {
		return fmt.Errorf("decoding cache entry body: %w", err)
	}

	w.ExpiresAt = wire.ExpiresAt
	if cred.ClientID == "" && cred.RefreshToken != "" {
		w.Body = &RefreshOnly{RefreshToken: cred.RefreshToken}
		return nil
	}
	w.Body = &cred
	return nil
}

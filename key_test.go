package credcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyRoundTrip(t *testing.T) {
	key := NewKey("client-1", "https://api.example.com", "read write offline_access")

	parsed := ParseKey(key.String())

	assert.Equal(t, key, parsed)
	assert.Equal(t, key.String(), parsed.String())
}

func TestKeyString_Format(t *testing.T) {
	key := NewKey("client-1", "https://api.example.com", "read write")

	assert.Equal(t, "@@credcache@@::client-1::https://api.example.com::read write", key.String())
}

func TestParseKey_MissingScope(t *testing.T) {
	parsed := ParseKey("@@credcache@@::client-1::https://api.example.com")

	assert.Equal(t, KeyPrefix, parsed.Prefix)
	assert.Equal(t, "client-1", parsed.ClientID)
	assert.Equal(t, "https://api.example.com", parsed.Audience)
	assert.Empty(t, parsed.Scope)
}

func TestParseKey_Foreign(t *testing.T) {
	// Keys written by other systems parse without error and simply never
	// match.
	parsed := ParseKey("some-other-system-key")

	assert.Equal(t, "some-other-system-key", parsed.Prefix)
	assert.Empty(t, parsed.ClientID)
}

func TestKeyMatches_ScopeSuperset(t *testing.T) {
	stored := NewKey("client-1", "aud-1", "a b c")

	assert.True(t, NewKey("client-1", "aud-1", "a b").Matches(stored))
	assert.True(t, NewKey("client-1", "aud-1", "c").Matches(stored))
	assert.True(t, NewKey("client-1", "aud-1", "").Matches(stored))
	assert.False(t, NewKey("client-1", "aud-1", "a d").Matches(stored))
}

func TestKeyMatches_DifferentAudience(t *testing.T) {
	stored := NewKey("client-1", "aud-1", "a b c")

	assert.False(t, NewKey("client-1", "aud-2", "a").Matches(stored))
}

func TestKeyMatches_DifferentClient(t *testing.T) {
	stored := NewKey("client-1", "aud-1", "a b c")

	assert.False(t, NewKey("client-2", "aud-1", "a").Matches(stored))
}

func TestKeyMatches_ForeignPrefix(t *testing.T) {
	stored := Key{Prefix: "@@other@@", ClientID: "client-1", Audience: "aud-1", Scope: "a"}

	assert.False(t, NewKey("client-1", "aud-1", "a").Matches(stored))
}

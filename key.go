package credcache

import "strings"

// KeyPrefix identifies cache entries owned by this library. Keys written by
// anything else sharing the backend never match a lookup.
const KeyPrefix = "@@credcache@@"

const keySeparator = "::"

// Key is the composite identity of a cached credential: a fixed prefix, the
// OAuth client, the audience the token was issued for, and the granted scope.
type Key struct {
	Prefix   string
	ClientID string
	Audience string
	Scope    string
}

// NewKey builds a Key carrying the canonical prefix. Scope is a
// space-delimited list of scope tokens; order is preserved as given.
func NewKey(clientID, audience, scope string) Key {
	return Key{
		Prefix:   KeyPrefix,
		ClientID: clientID,
		Audience: audience,
		Scope:    scope,
	}
}

// ParseKey parses the wire form of a key. Parsing is permissive: missing
// trailing segments (typically scope) are left empty rather than failing, so
// foreign keys encountered during enumeration parse cleanly and simply never
// match.
func ParseKey(s string) Key {
	var k Key
	parts := strings.SplitN(s, keySeparator, 4)
	for i, p := range parts {
		switch i {
		case 0:
			k.Prefix = p
		case 1:
			k.ClientID = p
		case 2:
			k.Audience = p
		case 3:
			k.Scope = p
		}
	}
	return k
}

// String returns the wire form of the key: fields joined by "::" in the
// order prefix, client_id, audience, scope.
func (k Key) String() string {
	return strings.Join([]string{k.Prefix, k.ClientID, k.Audience, k.Scope}, keySeparator)
}

// Matches reports whether a stored candidate key can satisfy a request for
// k: the candidate must carry the canonical prefix, the same client and
// audience, and a scope set containing every scope token requested.
func (k Key) Matches(candidate Key) bool {
	if candidate.Prefix != KeyPrefix ||
		candidate.ClientID != k.ClientID ||
		candidate.Audience != k.Audience {
		return false
	}

	have := make(map[string]struct{})
	for _, scope := range strings.Fields(candidate.Scope) {
		have[scope] = struct{}{}
	}
	for _, scope := range strings.Fields(k.Scope) {
		if _, ok := have[scope]; !ok {
			return false
		}
	}
	return true
}

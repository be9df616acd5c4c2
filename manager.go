package credcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Manager orchestrates credential reads and writes against a storage
// backend, applying expiry policy, falling back to fuzzy key matching when
// an exact lookup misses, and keeping the key index consistent for backends
// that cannot enumerate their own keys.
//
// The Manager takes no locks: concurrent Get/Set on the same key from
// multiple callers can race, the ordinary read-modify-write hazard of any
// shared cache. That is an accepted trade-off, not a guarantee.
type Manager struct {
	backend  Backend
	enum     Enumerator   // non-nil when the backend enumerates natively
	manifest *KeyManifest // non-nil otherwise
	clientID string
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a Manager over backend, scoped to clientID. The enumeration
// strategy is selected once here: a backend implementing Enumerator is
// trusted to list its own keys, and any other backend gets a manifest-backed
// index namespaced by clientID.
func New(backend Backend, clientID string, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		clientID: clientID,
		now:      time.Now,
	}
	if enum, ok := backend.(Enumerator); ok {
		m.enum = enum
	} else {
		m.manifest = NewKeyManifest(backend, clientID)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get retrieves the credential body satisfying key. An exact lookup is tried
// first; on a miss, all known keys are enumerated and the first key matching
// the request (same client and audience, scope superset) is fetched instead.
// Returns the body, whether a usable entry was found, and any backend error.
// A miss at any stage is (nil, false, nil), never an error.
//
// leeway shortens the effective lifetime of the entry: an entry expiring
// within leeway of now is treated as already expired. An expired entry
// carrying a refresh token is narrowed to RefreshOnly, re-persisted under
// the requested key and returned; one without is purged from the backend
// and, when active, the manifest.
func (m *Manager) Get(ctx context.Context, key Key, leeway time.Duration) (Body, bool, error) {
	requested := key.String()

	wrapped, ok, err := m.fetch(ctx, requested)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		keys, err := m.knownKeys(ctx)
		if err != nil {
			return nil, false, err
		}
		if len(keys) == 0 {
			return nil, false, nil
		}

		matched, found := matchKey(key, keys)
		if !found {
			return nil, false, nil
		}

		// The matched key may no longer resolve (evicted or removed since
		// enumeration); that is an ordinary miss.
		wrapped, ok, err = m.fetch(ctx, matched)
		if err != nil {
			return nil, false, err
		}
	}
	if !ok {
		return nil, false, nil
	}

	if wrapped.ExpiresAt-int64(leeway/time.Second) < m.now().Unix() {
		if token := refreshToken(wrapped.Body); token != "" {
			narrowed := WrappedEntry{
				Body:      &RefreshOnly{RefreshToken: token},
				ExpiresAt: wrapped.ExpiresAt,
			}
			if err := m.persist(ctx, requested, narrowed); err != nil {
				return nil, false, err
			}
			log.Debug().Str("key", requested).
				Msg("expired cache entry narrowed to refresh token")
			return narrowed.Body, true, nil
		}

		if err := m.backend.Remove(ctx, requested); err != nil {
			return nil, false, fmt.Errorf("removing expired cache entry: %w", err)
		}
		if m.manifest != nil {
			if err := m.manifest.Remove(ctx, requested); err != nil {
				return nil, false, err
			}
		}
		log.Debug().Str("key", requested).Msg("expired cache entry purged")
		return nil, false, nil
	}

	return wrapped.Body, true, nil
}

// Set wraps the credential with its effective expiry and persists it under
// its canonical key, registering the key with the manifest when one is
// active. Backend errors propagate.
func (m *Manager) Set(ctx context.Context, cred *Credential) error {
	key := cred.Key().String()

	if err := m.persist(ctx, key, wrap(cred, m.now())); err != nil {
		return err
	}
	if m.manifest != nil {
		if err := m.manifest.Add(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every entry this manager owns. Removals are issued as
// independent fire-and-forget operations: Clear does not wait for them to
// complete before clearing the manifest and returning, guaranteeing only
// that every removal has been initiated. The removals are detached from
// ctx's cancellation so an early caller exit cannot strand entries.
func (m *Manager) Clear(ctx context.Context) error {
	keys, err := m.knownKeys(ctx)
	if err != nil {
		return err
	}

	detached := context.WithoutCancel(ctx)
	for _, key := range m.ownedKeys(keys) {
		go func(key string) {
			if err := m.backend.Remove(detached, key); err != nil {
				log.Warn().Err(err).Str("key", key).
					Msg("cache entry removal failed")
			}
		}(key)
	}

	if m.manifest != nil {
		return m.manifest.Clear(ctx)
	}
	return nil
}

// ClearSync is the synchronous variant of Clear for natively enumerable
// backends whose operations complete in-line, such as storage.Memory.
// Entries are removed serially, and all removals have completed when it
// returns. It fails when the backend cannot enumerate its own keys.
func (m *Manager) ClearSync(ctx context.Context) error {
	if m.enum == nil {
		return fmt.Errorf("backend does not support native key enumeration")
	}

	keys, err := m.enum.AllKeys(ctx)
	if err != nil {
		return err
	}
	for _, key := range m.ownedKeys(keys) {
		if err := m.backend.Remove(ctx, key); err != nil {
			return fmt.Errorf("removing cache entry %q: %w", key, err)
		}
	}
	return nil
}

// knownKeys enumerates every key the manager can see: the backend's own
// listing when it enumerates natively, the manifest's record otherwise.
func (m *Manager) knownKeys(ctx context.Context) ([]string, error) {
	if m.enum != nil {
		return m.enum.AllKeys(ctx)
	}
	keys, _, err := m.manifest.Get(ctx)
	return keys, err
}

// ownedKeys filters enumerated keys to those this manager wrote: canonical
// prefix and matching client id. A natively enumerable backend may hold
// foreign keys; those are left alone.
func (m *Manager) ownedKeys(keys []string) []string {
	var owned []string
	for _, k := range keys {
		parsed := ParseKey(k)
		if parsed.Prefix == KeyPrefix && parsed.ClientID == m.clientID {
			owned = append(owned, k)
		}
	}
	return owned
}

// matchKey returns the first enumerated key satisfying the request. The
// enumeration order is authoritative: no tie-break is applied when several
// stored keys could satisfy the same request.
func matchKey(want Key, keys []string) (string, bool) {
	for _, k := range keys {
		if want.Matches(ParseKey(k)) {
			return k, true
		}
	}
	return "", false
}

func (m *Manager) fetch(ctx context.Context, key string) (WrappedEntry, bool, error) {
	data, ok, err := m.backend.Get(ctx, key)
	if err != nil || !ok {
		return WrappedEntry{}, false, err
	}

	var wrapped WrappedEntry
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return WrappedEntry{}, false, fmt.Errorf("decoding cache entry %q: %w", key, err)
	}
	return wrapped, true, nil
}

func (m *Manager) persist(ctx context.Context, key string, entry WrappedEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	return m.backend.Set(ctx, key, data)
}

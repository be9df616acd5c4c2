package credcache

import (
	"context"
	"encoding/json"
	"fmt"
)

// manifestRecord is the single persisted record tracking every key a manager
// has written. Key order is insertion order, which is also the enumeration
// order the matcher sees.
type manifestRecord struct {
	Keys []string `json:"keys"`
}

// KeyManifest is the fallback key index used when the storage backend cannot
// enumerate its own keys. One record exists per manager, stored under a
// well-known key namespaced by client id so that managers sharing a backend
// do not collide. The Manager treats it as an opaque key-set oracle.
type KeyManifest struct {
	backend     Backend
	manifestKey string
}

// NewKeyManifest binds a manifest to a backend and client id.
func NewKeyManifest(backend Backend, clientID string) *KeyManifest {
	return &KeyManifest{
		backend:     backend,
		manifestKey: KeyPrefix + keySeparator + clientID,
	}
}

// Get returns the tracked key set in insertion order, and whether a manifest
// record exists at all.
func (m *KeyManifest) Get(ctx context.Context) ([]string, bool, error) {
	rec, ok, err := m.load(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return rec.Keys, true, nil
}

// Add registers a key, creating the manifest record lazily on first use.
// Adding a key that is already tracked is a no-op.
func (m *KeyManifest) Add(ctx context.Context, key string) error {
	rec, _, err := m.load(ctx)
	if err != nil {
		return err
	}
	for _, k := range rec.Keys {
		if k == key {
			return nil
		}
	}
	rec.Keys = append(rec.Keys, key)
	return m.store(ctx, rec)
}

// Remove deregisters a key. Removing the last tracked key deletes the record
// entirely; removing an untracked key is a no-op.
func (m *KeyManifest) Remove(ctx context.Context, key string) error {
	rec, ok, err := m.load(ctx)
	if err != nil || !ok {
		return err
	}

	kept := make([]string, 0, len(rec.Keys))
	for _, k := range rec.Keys {
		if k != key {
			kept = append(kept, k)
		}
	}
	if len(kept) == len(rec.Keys) {
		return nil
	}
	if len(kept) == 0 {
		return m.backend.Remove(ctx, m.manifestKey)
	}

	rec.Keys = kept
	return m.store(ctx, rec)
}

// Clear deletes the manifest record.
func (m *KeyManifest) Clear(ctx context.Context) error {
	return m.backend.Remove(ctx, m.manifestKey)
}

func (m *KeyManifest) load(ctx context.Context) (manifestRecord, bool, error) {
	data, ok, err := m.backend.Get(ctx, m.manifestKey)
	if err != nil {
		return manifestRecord{}, false, fmt.Errorf("loading key manifest: %w", err)
	}
	if !ok {
		return manifestRecord{}, false, nil
	}

	var rec manifestRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return manifestRecord{}, false, fmt.Errorf("decoding key manifest: %w", err)
	}
	return rec, true, nil
}

func (m *KeyManifest) store(ctx context.Context, rec manifestRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return m.backend.Set(ctx, m.manifestKey, data)
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// Valkey is a distributed backend using Valkey with server-assisted
// client-side caching on reads. It deliberately does not enumerate keys:
// KEYS scans are unsuitable for production Valkey, so a manager over this
// backend tracks its keys in a manifest.
//
// The backend TTL is a garbage-collection floor independent of the manager's
// logical expiry: entries the manager never revisits are eventually dropped
// by the server, and an entry dropped while still listed in the manifest
// resolves as an ordinary miss.
type Valkey struct {
	client   valkey.Client
	ttl      time.Duration
	strategy EncryptionStrategy
}

// NewValkey creates a Valkey-backed store. The ttl parameter bounds both the
// client-side caching window and the server-side lifetime of entries. The
// strategy parameter controls encryption of stored values; nil defaults to
// NoEncryptionStrategy.
func NewValkey(client valkey.Client, ttl time.Duration, strategy EncryptionStrategy) (*Valkey, error) {
	if strategy == nil {
		strategy = &NoEncryptionStrategy{}
	}
	return &Valkey{
		client:   client,
		ttl:      ttl,
		strategy: strategy,
	}, nil
}

// Get retrieves a value using server-assisted client-side caching. Returns
// the value, whether it was found, and any error. Decryption failures are
// returned as errors, and the corrupted entry is invalidated on a
// best-effort basis.
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	storageKey := v.strategy.StorageKey(key)

	// DoCache enables client-side caching with server tracking.
	cmd := v.client.B().Get().Key(storageKey).Cache()
	result := v.client.DoCache(ctx, cmd, v.ttl)

	if err := result.Error(); err != nil {
		// Key not found is not an error in our semantics
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached value: %w", err)
	}

	val, err := result.ToString()
	if err != nil {
		return nil, false, fmt.Errorf("failed to convert cached value to string: %w", err)
	}

	data, err := v.strategy.DecryptValue(val, key)
	if err != nil {
		// Best-effort invalidation of the corrupted entry.
		_ = v.client.Do(ctx, v.client.B().Del().Key(storageKey).Build()).Error()

		return nil, false, fmt.Errorf("cache decryption failure for key %q: %w", key, err)
	}

	return data, true, nil
}

// Set stores a value with the configured TTL.
func (v *Valkey) Set(ctx context.Context, key string, value []byte) error {
	encrypted, err := v.strategy.EncryptValue(value, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	cmd := v.client.B().Set().Key(v.strategy.StorageKey(key)).Value(encrypted).ExSeconds(int64(v.ttl.Seconds())).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cached value: %w", err)
	}
	return nil
}

// Remove deletes a key.
func (v *Valkey) Remove(ctx context.Context, key string) error {
	cmd := v.client.B().Del().Key(v.strategy.StorageKey(key)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to remove cached value: %w", err)
	}
	return nil
}

// Close releases the client connection and the encryption strategy.
func (v *Valkey) Close() error {
	if err := v.strategy.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing encryption strategy")
	}
	v.client.Close()
	return nil
}

// Package credcache caches credential bundles in front of a pluggable
// key/value store. It answers one query shape: given a client, audience and
// scope, find a stored credential whose scope set covers the request. Expiry
// is enforced on read, with a narrow exception that preserves an expired
// entry's refresh token. Backends that cannot enumerate their own keys are
// supplemented with a persisted key manifest.
package credcache

import "context"

// Backend is the minimal key/value contract the cache requires. Values are
// opaque bytes; the cache owns their encoding. Implementations live in the
// storage package, but anything satisfying this interface will do.
type Backend interface {
	// Get retrieves a value. Returns the value, whether it was found, and
	// any error. A missing key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes a key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string) error
}

// Enumerator is the optional capability of backends that can list their own
// keys. When a backend implements it, the Manager delegates enumeration to
// the backend; otherwise it maintains a KeyManifest as a fallback index. The
// capability is checked once at construction, not per call.
type Enumerator interface {
	// AllKeys lists every key held by the backend, in backend-defined order.
	AllKeys(ctx context.Context) ([]string, error)
}

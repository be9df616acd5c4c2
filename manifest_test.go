package credcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestGet_NoRecord(t *testing.T) {
	ctx := context.Background()
	manifest := NewKeyManifest(newFakeBackend(), "client-1")

	keys, ok, err := manifest.Get(ctx)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, keys)
}

func TestManifestAdd_CreatesRecordLazily(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	manifest := NewKeyManifest(backend, "client-1")

	require.NoError(t, manifest.Add(ctx, "key-a"))

	keys, ok, err := manifest.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"key-a"}, keys)
}

func TestManifestAdd_Idempotent(t *testing.T) {
	ctx := context.Background()
	manifest := NewKeyManifest(newFakeBackend(), "client-1")

	require.NoError(t, manifest.Add(ctx, "key-a"))
	require.NoError(t, manifest.Add(ctx, "key-a"))
	require.NoError(t, manifest.Add(ctx, "key-b"))

	keys, _, err := manifest.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"key-a", "key-b"}, keys)
}

func TestManifestRemove_KeepsRemainingKeys(t *testing.T) {
	ctx := context.Background()
	manifest := NewKeyManifest(newFakeBackend(), "client-1")

	require.NoError(t, manifest.Add(ctx, "key-a"))
	require.NoError(t, manifest.Add(ctx, "key-b"))

	require.NoError(t, manifest.Remove(ctx, "key-a"))

	keys, ok, err := manifest.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"key-b"}, keys)
}

func TestManifestRemove_LastKeyDeletesRecord(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	manifest := NewKeyManifest(backend, "client-1")

	require.NoError(t, manifest.Add(ctx, "key-a"))
	require.NoError(t, manifest.Remove(ctx, "key-a"))

	_, ok, err := manifest.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, backend.size())
}

func TestManifestRemove_UntrackedKeyNoOp(t *testing.T) {
	ctx := context.Background()
	manifest := NewKeyManifest(newFakeBackend(), "client-1")

	require.NoError(t, manifest.Add(ctx, "key-a"))
	require.NoError(t, manifest.Remove(ctx, "never-added"))

	keys, _, err := manifest.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"key-a"}, keys)
}

func TestManifestClear(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	manifest := NewKeyManifest(backend, "client-1")

	require.NoError(t, manifest.Add(ctx, "key-a"))
	require.NoError(t, manifest.Add(ctx, "key-b"))

	require.NoError(t, manifest.Clear(ctx))

	_, ok, err := manifest.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManifest_ClientNamespacing(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()

	one := NewKeyManifest(backend, "client-1")
	two := NewKeyManifest(backend, "client-2")

	require.NoError(t, one.Add(ctx, "key-a"))
	require.NoError(t, two.Add(ctx, "key-b"))

	keys, _, err := one.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"key-a"}, keys)

	keys, _, err = two.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"key-b"}, keys)
}

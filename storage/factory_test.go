package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig_Memory(t *testing.T) {
	ctx := context.Background()

	backend, err := NewFromConfig(ctx, Config{Type: "memory"})

	require.NoError(t, err)
	assert.NotNil(t, backend)
}

func TestNewFromConfig_Bounded(t *testing.T) {
	ctx := context.Background()

	backend, err := NewFromConfig(ctx, Config{Type: "bounded", MaxSize: 100})

	require.NoError(t, err)
	assert.NotNil(t, backend)
}

func TestNewFromConfig_InvalidType(t *testing.T) {
	ctx := context.Background()

	_, err := NewFromConfig(ctx, Config{Type: "redis"})

	assert.ErrorContains(t, err, "invalid cache type")
}

func TestNewFromConfig_ValkeyRequiresAddress(t *testing.T) {
	ctx := context.Background()

	_, err := NewFromConfig(ctx, Config{Type: "valkey"})

	assert.ErrorContains(t, err, "valkey address is required")
}

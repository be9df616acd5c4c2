package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, 10000, cfg.MaxSize)
	assert.True(t, cfg.Valkey.TLS) // secure by default
	assert.False(t, cfg.Encryption.Enabled)
}

func TestConfig_Valkey(t *testing.T) {
	t.Setenv("CACHE_TYPE", "valkey")
	t.Setenv("VALKEY_ADDRESS", "localhost:6379")
	t.Setenv("VALKEY_USE_IAM_AUTH", "true")
	t.Setenv("VALKEY_IAM_CACHE_NAME", "test-cache")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	expected := ValkeyConfig{
		Address:      "localhost:6379",
		TLS:          true, // default
		UseIAMAuth:   true,
		IAMCacheName: "test-cache",
		TTLSeconds:   86400,
	}
	assert.Equal(t, expected, cfg.Valkey)
}

func TestConfig_ValkeyTLSFalse(t *testing.T) {
	t.Setenv("CACHE_TYPE", "valkey")
	t.Setenv("VALKEY_ADDRESS", "localhost:6379")
	t.Setenv("VALKEY_TLS", "false")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.Valkey.TLS)
}

func TestConfigValidate_ValkeyRequiresAddress(t *testing.T) {
	cfg := Config{Type: "valkey"}

	assert.ErrorContains(t, cfg.Validate(), "valkey address is required")
}

func TestConfigValidate_IAMRequiresCacheName(t *testing.T) {
	cfg := Config{
		Type:   "valkey",
		Valkey: ValkeyConfig{Address: "localhost:6379", UseIAMAuth: true},
	}

	assert.ErrorContains(t, cfg.Validate(), "IAM cache name")
}

func TestConfigValidate_EncryptionRequiresValkey(t *testing.T) {
	cfg := Config{
		Type:       "memory",
		Encryption: EncryptionConfig{Enabled: true},
	}

	assert.ErrorContains(t, cfg.Validate(), "requires the valkey backend")
}

func TestConfigValidate_EncryptionRequiresKeySource(t *testing.T) {
	cfg := Config{
		Type:       "valkey",
		Valkey:     ValkeyConfig{Address: "localhost:6379"},
		Encryption: EncryptionConfig{Enabled: true},
	}

	assert.ErrorContains(t, cfg.Validate(), "keyset")
}

func TestConfigValidate_InvalidType(t *testing.T) {
	cfg := Config{Type: "redis"}

	assert.ErrorContains(t, cfg.Validate(), "invalid cache type")
}

package storage

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config selects and configures a cache storage backend.
type Config struct {
	// Type selects the backend implementation: "memory" (default), "bounded"
	// or "valkey".
	Type string `env:"CACHE_TYPE, default=memory"`

	// MaxSize caps the entry count of the bounded backend.
	MaxSize int `env:"CACHE_MAX_SIZE, default=10000"`

	// Valkey holds distributed backend settings.
	Valkey ValkeyConfig

	// Encryption holds at-rest encryption settings.
	// Only supported with the valkey backend.
	Encryption EncryptionConfig
}

// ValkeyConfig specifies distributed backend configuration.
type ValkeyConfig struct {
	// Address is the Valkey server address (host:port).
	Address string `env:"VALKEY_ADDRESS"`

	// TLS enables TLS connection to Valkey. Defaults to true so the secure
	// option is the default.
	TLS bool `env:"VALKEY_TLS, default=true"`

	// Username for Valkey authentication.
	Username string `env:"VALKEY_USERNAME"`

	// Password for Valkey authentication. Ignored when IAM auth is enabled.
	Password string `env:"VALKEY_PASSWORD"`

	// UseIAMAuth enables ElastiCache IAM authentication in place of a static
	// password.
	UseIAMAuth bool `env:"VALKEY_USE_IAM_AUTH, default=false"`

	// IAMCacheName is the ElastiCache replication group or serverless cache
	// name used when signing IAM auth tokens.
	IAMCacheName string `env:"VALKEY_IAM_CACHE_NAME"`

	// IAMServerless signs IAM tokens for a serverless cache.
	IAMServerless bool `env:"VALKEY_IAM_SERVERLESS, default=false"`

	// TTLSeconds is the server-side lifetime of entries. This is a garbage
	// collection floor, not the cache's logical expiry.
	TTLSeconds int `env:"VALKEY_TTL_SECS, default=86400"`
}

// EncryptionConfig holds settings for at-rest encryption of cached values.
type EncryptionConfig struct {
	// Enabled turns on encryption for cached values.
	// Requires CACHE_TYPE=valkey.
	Enabled bool `env:"CACHE_ENCRYPTION_ENABLED, default=false"`

	// KeysetFile is a path to a cleartext Tink keyset in JSON form. Intended
	// for development and tests; production should use the KMS keyset.
	KeysetFile string `env:"CACHE_ENCRYPTION_KEYSET_FILE"`

	// KeysetURI is the URI to the encrypted Tink keyset.
	// Format: aws-secretsmanager://secret-name
	KeysetURI string `env:"CACHE_ENCRYPTION_KEYSET_URI"`

	// KMSEnvelopeKeyURI is the AWS KMS key URI for envelope encryption.
	// Format: aws-kms://arn:aws:kms:region:account:key/key-id
	KMSEnvelopeKeyURI string `env:"CACHE_ENCRYPTION_KMS_ENVELOPE_KEY_URI"`
}

// Load reads configuration from the OS environment and validates it.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid cache configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints that envconfig tags cannot express.
func (c Config) Validate() error {
	switch c.Type {
	case "memory", "bounded":
		if c.Encryption.Enabled {
			return fmt.Errorf("cache encryption requires the valkey backend")
		}

	case "valkey":
		if c.Valkey.Address == "" {
			return fmt.Errorf("valkey address is required when cache type is valkey")
		}
		if c.Valkey.UseIAMAuth && c.Valkey.IAMCacheName == "" {
			return fmt.Errorf("valkey IAM cache name is required when IAM auth is enabled")
		}
		if c.Encryption.Enabled && c.Encryption.KeysetFile == "" && c.Encryption.KMSEnvelopeKeyURI == "" {
			return fmt.Errorf("cache encryption requires a keyset file or a KMS envelope key")
		}

	default:
		return fmt.Errorf("invalid cache type %q: must be \"memory\", \"bounded\" or \"valkey\"", c.Type)
	}
	return nil
}

package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/chinmina/credcache"
	"github.com/chinmina/credcache/storage/encryption"
	"github.com/rs/zerolog/log"
	"github.com/tink-crypto/tink-go/v2/tink"
	"github.com/valkey-io/valkey-go"
)

// NewFromConfig creates a storage backend based on the provided
// configuration. It returns the backend and any error encountered.
//
// The backend type must be "memory", "bounded" or "valkey". Any other value
// returns an error. For "valkey", cfg.Valkey.Address must be provided. The
// returned backend is wrapped with metrics instrumentation.
func NewFromConfig(ctx context.Context, cfg Config) (credcache.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "valkey":
		log.Info().
			Str("backend", "valkey").
			Str("address", cfg.Valkey.Address).
			Bool("tls", cfg.Valkey.TLS).
			Bool("iam_enabled", cfg.Valkey.UseIAMAuth).
			Bool("encryption", cfg.Encryption.Enabled).
			Msg("initializing distributed cache backend")

		valkeyOpts := valkey.ClientOption{
			InitAddress: []string{cfg.Valkey.Address},
		}

		if cfg.Valkey.UseIAMAuth {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, fmt.Errorf("loading AWS config for IAM auth: %w", err)
			}

			credsFn, err := IAMCredentialsFn(cfg.Valkey, awsCfg)
			if err != nil {
				return nil, fmt.Errorf("configuring IAM credentials: %w", err)
			}
			valkeyOpts.AuthCredentialsFn = credsFn
			valkeyOpts.ConnLifetime = 11 * time.Hour
		} else {
			valkeyOpts.AuthCredentialsFn = StaticCredentialsFn(
				cfg.Valkey.Username,
				cfg.Valkey.Password,
			)
		}

		if cfg.Valkey.TLS {
			valkeyOpts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		valkeyClient, err := valkey.NewClient(valkeyOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create valkey client: %w", err)
		}

		var strategy EncryptionStrategy
		if cfg.Encryption.Enabled {
			var aead tink.AEAD
			var err error

			switch {
			case cfg.Encryption.KeysetFile != "":
				aead, err = encryption.NewAEADFromFile(cfg.Encryption.KeysetFile)
			default:
				aead, err = encryption.NewAEADFromKMS(ctx, cfg.Encryption.KeysetURI, cfg.Encryption.KMSEnvelopeKeyURI)
			}
			if err != nil {
				valkeyClient.Close()
				return nil, fmt.Errorf("initializing encryption: %w", err)
			}
			strategy = NewTinkEncryptionStrategy(aead)

			log.Info().Msg("cache encryption enabled")
		}

		ttl := time.Duration(cfg.Valkey.TTLSeconds) * time.Second
		backend, err := NewValkey(valkeyClient, ttl, strategy)
		if err != nil {
			if strategy != nil {
				_ = strategy.Close()
			}
			valkeyClient.Close()
			return nil, fmt.Errorf("failed to create valkey backend: %w", err)
		}

		return NewInstrumented(backend, "valkey"), nil

	case "bounded":
		log.Info().
			Str("backend", "bounded").
			Int("max_size", cfg.MaxSize).
			Msg("initializing bounded in-memory cache backend")

		backend, err := NewBounded(cfg.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create bounded backend: %w", err)
		}

		return NewInstrumented(backend, "bounded"), nil

	case "memory":
		log.Info().
			Str("backend", "memory").
			Msg("initializing in-memory cache backend")

		return NewInstrumented(NewMemory(), "memory"), nil

	default:
		return nil, fmt.Errorf("invalid cache type %q: must be \"memory\", \"bounded\" or \"valkey\"", cfg.Type)
	}
}

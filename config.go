package goIdent

import (
	"errors"
	"regexp"
	"time"
)

// Config defines the repository configuration tree. Construct with
// [defaultConfig] via [New] and override through [Builder.WithConfig].
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Storage    StorageConfig
	Validation ValidationConfig
	Password   PasswordConfig
	Digest     DigestConfig
	JWT        JWTConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the Redis key namespace shared by the primary table,
// both index tables, the detail rows, and the id sequence.
type StorageConfig struct {
	RedisPrefix  string
	SequenceName string
}

/*
====================================
VALIDATION CONFIG
====================================
*/

// ValidationConfig controls structural identity validation.
//
// UserNamePattern is compiled once at Build time. Usernames containing "@"
// are always rejected regardless of the pattern: identifier lookup routes
// email-shaped strings to the email index, so such a username would be
// unreachable.
type ValidationConfig struct {
	UserNamePattern string
	MaxEmailLength  int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the argon2id cost parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DigestConfig configures digest-auth HA1 derivation.
type DigestConfig struct {
	Realm string
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig enables the optional session-token layer used by
// [Repository.TryAuthenticateWithToken].
type JWTConfig struct {
	Enabled       bool
	SessionTTL    time.Duration
	SigningMethod string // "hs256" or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

const defaultUserNamePattern = `^[A-Za-z0-9._-]{3,64}$`

// DefaultConfig returns the configuration tree [New] starts from. Embedders
// that only need a few overrides can mutate the copy and pass it to
// [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			RedisPrefix:  "gi",
			SequenceName: "userauth",
		},
		Validation: ValidationConfig{
			UserNamePattern: defaultUserNamePattern,
			MaxEmailLength:  254,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Digest: DigestConfig{
			Realm: "goident",
		},
		JWT: JWTConfig{
			Enabled:    false,
			SessionTTL: 15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for internally inconsistent or unsafe
// values. Called by [Builder.Build]; exported so embedders can pre-flight
// configs they assemble elsewhere.
func (c *Config) Validate() error {
	if c.Storage.RedisPrefix == "" {
		return errors.New("storage redis prefix required")
	}
	if c.Storage.SequenceName == "" {
		return errors.New("storage sequence name required")
	}

	if c.Validation.UserNamePattern == "" {
		return errors.New("validation username pattern required")
	}
	if _, err := regexp.Compile(c.Validation.UserNamePattern); err != nil {
		return errors.New("validation username pattern does not compile")
	}
	if c.Validation.MaxEmailLength <= 0 {
		return errors.New("validation max email length must be positive")
	}

	if c.Digest.Realm == "" {
		return errors.New("digest realm required")
	}

	if c.JWT.Enabled {
		if c.JWT.SessionTTL <= 0 {
			return errors.New("jwt session TTL must be positive")
		}
		switch c.JWT.SigningMethod {
		case "hs256", "ed25519":
		default:
			return errors.New("jwt signing method must be hs256 or ed25519")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	cloned := cfg
	cloned.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	cloned.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return cloned
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cloned := make([]byte, len(b))
	copy(cloned, b)
	return cloned
}

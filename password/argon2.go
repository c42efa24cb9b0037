package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
)

// Config holds the argon2id cost parameters.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Hasher derives and verifies argon2id password hashes with an externally
// stored salt.
//
// Hasher instances are intended to be configured during initialization and
// then treated as immutable.
type Hasher struct {
	config Config
}

// NewHasher validates the cost parameters and returns a Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Hasher{config: cfg}, nil
}

// Hash derives an argon2id key from password under a fresh random salt and
// returns both as base64. The salt is stored alongside the hash on the
// identity record, not embedded in it.
func (h *Hasher) Hash(password string) (hash string, salt string, err error) {
	if password == "" {
		return "", "", errors.New("password must not be empty")
	}

	rawSalt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, rawSalt); err != nil {
		return "", "", err
	}

	rawHash := argon2.IDKey(
		[]byte(password),
		rawSalt,
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		h.config.KeyLength,
	)

	return base64.StdEncoding.EncodeToString(rawHash),
		base64.StdEncoding.EncodeToString(rawSalt),
		nil
}

// Verify recomputes the argon2id key for password under the stored salt and
// compares it against the stored hash in constant time.
func (h *Hasher) Verify(password, hash, salt string) (bool, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, errors.New("invalid salt encoding")
	}
	if uint32(len(rawSalt)) < minSaltLength {
		return false, errors.New("invalid salt length")
	}

	rawHash, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, errors.New("invalid hash encoding")
	}
	if len(rawHash) == 0 {
		return false, errors.New("invalid hash length")
	}

	computed := argon2.IDKey(
		[]byte(password),
		rawSalt,
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		uint32(len(rawHash)),
	)

	return subtle.ConstantTimeCompare(computed, rawHash) == 1, nil
}

func validateConfig(cfg Config) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("password memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return errors.New("password time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("password parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}

	return nil
}

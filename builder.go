package goIdent

import (
	"errors"
	"regexp"

	"github.com/MrEthical07/goIdent/index"
	internalaudit "github.com/MrEthical07/goIdent/internal/audit"
	"github.com/MrEthical07/goIdent/internal/stores"
	"github.com/MrEthical07/goIdent/jwt"
	"github.com/MrEthical07/goIdent/password"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Repository]. Construction is allocation-only; no
// Redis I/O happens until the first Repository method call.
//
// Builder instances are intended to be configured during initialization and
// then treated as immutable.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	idGen     IDGenerator
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing all tables.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIDGenerator overrides the id source. When unset, Build wires a Redis
// INCR sequence under the configured prefix.
func (b *Builder) WithIDGenerator(gen IDGenerator) *Builder {
	b.idGen = gen
	return b
}

// WithAuditSink sets the sink that receives lifecycle audit events. Only
// consulted when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithAuditEnabled toggles the asynchronous audit dispatcher.
func (b *Builder) WithAuditEnabled(enabled bool) *Builder {
	b.config.Audit.Enabled = enabled
	return b
}

// WithSessionTokens enables the JWT session layer. method is "hs256" or
// "ed25519"; privateKey is the HMAC secret or the ed25519 private key. The
// session TTL keeps its configured value; ed25519 additionally needs the
// public key set through [Builder.WithConfig].
func (b *Builder) WithSessionTokens(method string, privateKey []byte, issuer string) *Builder {
	b.config.JWT.Enabled = true
	b.config.JWT.SigningMethod = method
	b.config.JWT.PrivateKey = cloneBytes(privateKey)
	b.config.JWT.Issuer = issuer
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the Repository. A Builder
// can build at most once.
func (b *Builder) Build() (*Repository, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pattern, err := regexp.Compile(cfg.Validation.UserNamePattern)
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	repo := &Repository{
		config:          cfg,
		usernameIndex:   index.NewStore(b.redis, cfg.Storage.RedisPrefix, "username"),
		emailIndex:      index.NewStore(b.redis, cfg.Storage.RedisPrefix, "email"),
		users:           stores.NewUserAuthStore(b.redis, cfg.Storage.RedisPrefix),
		details:         stores.NewUserAuthDetailsStore(b.redis, cfg.Storage.RedisPrefix),
		hasher:          hasher,
		metrics:         newMetrics(cfg.Metrics),
		userNamePattern: pattern,
	}

	repo.idGen = b.idGen
	if repo.idGen == nil {
		repo.idGen = stores.NewSequence(b.redis, cfg.Storage.RedisPrefix, cfg.Storage.SequenceName)
	}

	if cfg.JWT.Enabled {
		manager, err := jwt.NewManager(jwt.Config{
			SessionTTL:    cfg.JWT.SessionTTL,
			SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
			PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
			PublicKey:     cloneBytes(cfg.JWT.PublicKey),
			Issuer:        cfg.JWT.Issuer,
		})
		if err != nil {
			return nil, err
		}
		repo.jwtManager = manager
	}

	repo.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true

	return repo, nil
}

package goIdent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goIdent/index"
	"github.com/MrEthical07/goIdent/password"
)

// CreateUserAuth registers a new identity: assigns the next id, derives the
// credential hashes, and drives the registration protocol (reserve both
// identifiers, conditional-create the primary record).
//
// On success the persisted record is returned. On failure the error is one
// of [ErrInvalidIdentity], [ErrAlreadyExists], [ErrAlreadyRegistered], or
// [ErrRedisUnavailable], and no index reservation made by this call
// survives.
func (r *Repository) CreateUserAuth(ctx context.Context, candidate *UserAuth, plainPassword string) (*UserAuth, error) {
	if r == nil {
		return nil, ErrRepositoryNotReady
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: no candidate record", ErrInvalidIdentity)
	}

	work := candidate.Clone()

	id, err := r.idGen.Next(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	work.ID = id

	now := time.Now().UTC()
	work.CreatedDate = now
	work.ModifiedDate = now

	if plainPassword != "" {
		if err := r.applyCredential(work, plainPassword); err != nil {
			return nil, err
		}
	}

	reg := newRegistration(r, work, nil)
	defer reg.cleanup(ctx)

	if err := reg.register(ctx); err != nil {
		r.recordCreateFailure(ctx, work, err)
		return nil, err
	}

	r.metrics.Inc(MetricRegisterSuccess)
	r.emitAudit(ctx, "identity.register", work, true, nil)

	return work.Clone(), nil
}

// applyCredential derives the argon2id hash/salt pair and, when a username
// is present, the digest HA1 keyed by it.
func (r *Repository) applyCredential(work *UserAuth, plainPassword string) error {
	hash, salt, err := r.hasher.Hash(plainPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	work.PasswordHash = hash
	work.Salt = salt

	if username := index.Normalize(work.UserName); username != "" {
		work.DigestHA1Hash = password.DigestHA1(username, r.config.Digest.Realm, plainPassword)
	} else {
		work.DigestHA1Hash = ""
	}

	return nil
}

func (r *Repository) recordCreateFailure(ctx context.Context, work *UserAuth, err error) {
	switch {
	case errors.Is(err, ErrInvalidIdentity):
		r.metrics.Inc(MetricRegisterInvalid)
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrAlreadyRegistered):
		r.metrics.Inc(MetricRegisterConflict)
	}
	r.emitAudit(ctx, "identity.register", work, false, err)
}

package goIdent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goIdent/index"
)

// UpdateUserAuth re-registers an existing identity under new attributes.
// The id and creation timestamp are carried forward from existing; when
// existing is nil the persisted record is restored by candidate id first.
//
// Credential hashes are re-derived only when plainPassword is supplied. A
// username change without a password keeps the stored argon2 hash (it is
// not username-keyed) but clears the digest HA1, which is — a stale HA1
// under the new username would verify nothing.
//
// Changed identifiers are reserved before the record write and the old rows
// are released only after it, so no point in the sequence has two
// identities holding the same identifier.
func (r *Repository) UpdateUserAuth(ctx context.Context, existing, candidate *UserAuth, plainPassword string) (*UserAuth, error) {
	if r == nil {
		return nil, ErrRepositoryNotReady
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: no candidate record", ErrInvalidIdentity)
	}

	if existing == nil {
		loaded, err := r.users.Get(ctx, candidate.ID)
		if err != nil {
			return nil, mapStoreErr(err)
		}
		existing = loaded
	}

	work := candidate.Clone()
	work.ID = existing.ID
	work.CreatedDate = existing.CreatedDate
	work.ModifiedDate = time.Now().UTC()

	usernameChanged := index.Normalize(work.UserName) != index.Normalize(existing.UserName)

	if plainPassword != "" {
		if err := r.applyCredential(work, plainPassword); err != nil {
			return nil, err
		}
	} else {
		work.PasswordHash = existing.PasswordHash
		work.Salt = existing.Salt
		if usernameChanged {
			work.DigestHA1Hash = ""
		} else {
			work.DigestHA1Hash = existing.DigestHA1Hash
		}
	}

	reg := newRegistration(r, work, existing.Clone())
	defer reg.cleanup(ctx)

	if err := reg.update(ctx); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			r.metrics.Inc(MetricUpdateConflict)
		}
		r.emitAudit(ctx, "identity.update", work, false, err)
		return nil, err
	}

	r.metrics.Inc(MetricUpdateSuccess)
	r.emitAudit(ctx, "identity.update", work, true, nil)

	return work.Clone(), nil
}

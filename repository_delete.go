package goIdent

import (
	"context"
	"errors"
)

// DeleteUserAuth tombstones an identity: the primary record goes first,
// then both index rows, then the linked OAuth detail rows. Deleting an
// absent id is a no-op.
//
// The detail purge runs after the core protocol and is not part of the
// uniqueness invariant; a failure there surfaces to the caller but the
// identity itself is already gone.
func (r *Repository) DeleteUserAuth(ctx context.Context, id int64) error {
	if r == nil {
		return ErrRepositoryNotReady
	}

	existing, err := r.users.Get(ctx, id)
	if err != nil {
		mapped := mapStoreErr(err)
		if errors.Is(mapped, ErrUserNotFound) {
			return nil
		}
		return mapped
	}

	reg := newRegistration(r, existing, existing.Clone())
	defer reg.cleanup(ctx)

	if err := reg.remove(ctx); err != nil {
		r.emitAudit(ctx, "identity.remove", existing, false, err)
		return err
	}

	r.metrics.Inc(MetricRemoveSuccess)
	r.emitAudit(ctx, "identity.remove", existing, true, nil)

	return r.details.DeleteForUser(ctx, id)
}

package goIdent

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/MrEthical07/goIdent/index"
	"github.com/MrEthical07/goIdent/internal/stores"
)

// registration is one run of the protocol: bound to one candidate record,
// at most one prior snapshot, and the two index tables. It is owned by a
// single facade call, never shared across goroutines, and must end in
// cleanup on every exit path so a failed session cannot leave a fresh
// reservation behind.
type registration struct {
	repo      *Repository
	candidate *UserAuth
	snapshot  *UserAuth

	state            regState
	validationPassed bool
	validationErr    error

	// Reservation flags track only rows this session created. Pre-existing
	// rows owned by the same id are never flagged, so cleanup cannot
	// release an identifier a committed identity still depends on.
	usernameReserved bool
	emailReserved    bool
}

func newRegistration(repo *Repository, candidate, snapshot *UserAuth) *registration {
	state := stateUnregistered
	if snapshot != nil {
		state = stateRegistered
	}
	return &registration{
		repo:      repo,
		candidate: candidate,
		snapshot:  snapshot,
		state:     state,
	}
}

func (r *registration) guards() regGuards {
	g := regGuards{
		validationPassed: r.validationPassed,
		registered:       r.snapshot != nil,
		hasUsername:      index.Normalize(r.candidate.UserName) != "",
		hasEmail:         index.Normalize(r.candidate.Email) != "",
	}
	if r.snapshot != nil {
		g.oldHasUsername = index.Normalize(r.snapshot.UserName) != ""
		g.oldHasEmail = index.Normalize(r.snapshot.Email) != ""
		g.usernameChanged = index.Normalize(r.candidate.UserName) != index.Normalize(r.snapshot.UserName)
		g.emailChanged = index.Normalize(r.candidate.Email) != index.Normalize(r.snapshot.Email)
	}
	return g
}

// fire advances the machine one trigger and executes the ordered effects.
// The state only moves when every effect succeeded; a failed effect leaves
// the session where it was so cleanup sees the reservation flags exactly as
// the partial sequence left them.
func (r *registration) fire(ctx context.Context, trigger regTrigger) error {
	next, effects, err := step(r.state, trigger, r.guards())
	if err != nil {
		return err
	}

	for _, effect := range effects {
		if err := r.apply(ctx, effect); err != nil {
			return err
		}
	}

	r.state = next
	return nil
}

func (r *registration) apply(ctx context.Context, effect regEffect) error {
	switch effect {
	case effectRunValidation:
		r.validationErr = validateUserAuth(r.repo.userNamePattern, r.repo.config.Validation.MaxEmailLength, r.candidate)
		r.validationPassed = r.validationErr == nil
		return nil

	case effectReserveUsername:
		fresh, err := r.repo.usernameIndex.Reserve(ctx, r.candidate.UserName, r.candidate.ID)
		if err != nil {
			return mapIndexErr(err)
		}
		if fresh {
			r.usernameReserved = true
		}
		return nil

	case effectReserveEmail:
		fresh, err := r.repo.emailIndex.Reserve(ctx, r.candidate.Email, r.candidate.ID)
		if err != nil {
			return mapIndexErr(err)
		}
		if fresh {
			r.emailReserved = true
		}
		return nil

	case effectCreateRecord:
		if err := r.repo.users.Create(ctx, r.candidate); err != nil {
			return mapStoreErr(err)
		}
		return nil

	case effectSaveRecord:
		if err := r.repo.users.Save(ctx, r.candidate); err != nil {
			return mapStoreErr(err)
		}
		return nil

	case effectReleaseOldUsername:
		r.releaseBestEffort(ctx, r.repo.usernameIndex, r.snapshot.UserName, "old username")
		return nil

	case effectReleaseOldEmail:
		r.releaseBestEffort(ctx, r.repo.emailIndex, r.snapshot.Email, "old email")
		return nil

	case effectLoadRecord:
		loaded, err := r.repo.users.Get(ctx, r.candidate.ID)
		if err != nil {
			return mapStoreErr(err)
		}
		r.snapshot = loaded
		return nil

	case effectDeleteRecord:
		if _, err := r.repo.users.Delete(ctx, r.candidate.ID); err != nil {
			return mapStoreErr(err)
		}
		return nil

	case effectReleaseUsername:
		r.releaseBestEffort(ctx, r.repo.usernameIndex, r.snapshot.UserName, "username")
		return nil

	case effectReleaseEmail:
		r.releaseBestEffort(ctx, r.repo.emailIndex, r.snapshot.Email, "email")
		return nil

	case effectReleaseHeld:
		if r.usernameReserved {
			r.releaseBestEffort(ctx, r.repo.usernameIndex, r.candidate.UserName, "held username")
			r.usernameReserved = false
		}
		if r.emailReserved {
			r.releaseBestEffort(ctx, r.repo.emailIndex, r.candidate.Email, "held email")
			r.emailReserved = false
		}
		return nil

	case effectCommit:
		// The reservations now belong to the persisted record; cleanup must
		// leave them alone.
		r.usernameReserved = false
		r.emailReserved = false
		return nil

	default:
		return fmt.Errorf("unhandled registration effect %d", effect)
	}
}

// releaseBestEffort drops an index row, logging and swallowing backend
// failures so a failed compensation never masks the error that triggered
// it. An orphaned row left this way is reclaimed by a later release of the
// same identifier or an out-of-band sweep.
func (r *registration) releaseBestEffort(ctx context.Context, store *index.Store, identifier, kind string) {
	if err := store.Release(ctx, identifier); err != nil {
		log.Printf("goIdent: best-effort release of %s %q for id %d failed: %v", kind, index.Normalize(identifier), r.candidate.ID, err)
	}
}

// validate fires Validate/Validated and surfaces the validation verdict.
func (r *registration) validate(ctx context.Context) error {
	if err := r.fire(ctx, triggerValidate); err != nil {
		return err
	}
	if r.validationErr != nil {
		failure := r.validationErr
		if err := r.fire(ctx, triggerValidated); err != nil {
			return err
		}
		return failure
	}
	return r.fire(ctx, triggerValidated)
}

// register drives a brand-new identity to Registered: validate, reserve
// both identifiers, conditional-create the primary record.
func (r *registration) register(ctx context.Context) error {
	if err := r.validate(ctx); err != nil {
		return err
	}
	if err := r.fire(ctx, triggerRegister); err != nil {
		return err
	}
	return r.fire(ctx, triggerRegistered)
}

// update drives an existing identity through a re-registration: restore the
// snapshot when the caller did not supply one, validate, reserve changed
// identifiers, persist, release the superseded rows.
func (r *registration) update(ctx context.Context) error {
	if r.snapshot == nil {
		if err := r.restore(ctx); err != nil {
			return err
		}
	}
	if err := r.validate(ctx); err != nil {
		return err
	}
	if err := r.fire(ctx, triggerUpdate); err != nil {
		return err
	}
	return r.fire(ctx, triggerRegistered)
}

// remove tombstones the identity: record first, then both index rows.
func (r *registration) remove(ctx context.Context) error {
	if r.snapshot == nil {
		if err := r.restore(ctx); err != nil {
			return err
		}
	}
	if err := r.fire(ctx, triggerRemove); err != nil {
		return err
	}
	return r.fire(ctx, triggerRemoved)
}

// restore loads the persisted record for the candidate id.
func (r *registration) restore(ctx context.Context) error {
	return r.fire(ctx, triggerRestore)
}

// cleanup releases any reservation the session still holds. Fireable from
// every state; the facade defers it on each operation so no exit path can
// skip it.
func (r *registration) cleanup(ctx context.Context) {
	if err := r.fire(ctx, triggerCleanup); err != nil {
		log.Printf("goIdent: registration cleanup for id %d failed: %v", r.candidate.ID, err)
	}
}

func mapIndexErr(err error) error {
	switch {
	case errors.Is(err, index.ErrClaimed):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case errors.Is(err, index.ErrRedisUnavailable):
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	default:
		return err
	}
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, stores.ErrDuplicateID):
		return fmt.Errorf("%w: %v", ErrAlreadyRegistered, err)
	case errors.Is(err, stores.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	case errors.Is(err, stores.ErrRedisUnavailable):
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	default:
		return err
	}
}

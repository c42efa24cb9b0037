package goIdent

import (
	"context"
	"fmt"
	"strings"
)

// GetUserAuthByUserName resolves an identifier to its identity. Inputs
// containing "@" are looked up in the email index; everything else uses the
// username index. An email-shaped string never matches a username.
func (r *Repository) GetUserAuthByUserName(ctx context.Context, identifier string) (*UserAuth, error) {
	if r == nil {
		return nil, ErrRepositoryNotReady
	}

	table := r.usernameIndex
	if strings.Contains(identifier, "@") {
		table = r.emailIndex
	}

	owner, found, err := table.LookupOwner(ctx, identifier)
	if err != nil {
		return nil, mapIndexErr(err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, identifier)
	}

	// The index row and the record are written non-transactionally; a row
	// pointing at a missing record is a transient orphan and reads as not
	// found.
	user, err := r.users.Get(ctx, owner)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return user, nil
}

// GetUserAuthByID loads an identity by id.
func (r *Repository) GetUserAuthByID(ctx context.Context, id int64) (*UserAuth, error) {
	if r == nil {
		return nil, ErrRepositoryNotReady
	}

	user, err := r.users.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return user, nil
}

// GetUserAuthDetails lists the OAuth detail rows linked to an identity.
func (r *Repository) GetUserAuthDetails(ctx context.Context, id int64) ([]*UserAuthDetails, error) {
	if r == nil {
		return nil, ErrRepositoryNotReady
	}

	rows, err := r.details.ListForUser(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return rows, nil
}

// SaveUserAuthDetails upserts one OAuth detail row, merging token fields
// with any previously stored row for the same provider identity.
func (r *Repository) SaveUserAuthDetails(ctx context.Context, details *UserAuthDetails) error {
	if r == nil {
		return ErrRepositoryNotReady
	}
	if details == nil {
		return fmt.Errorf("%w: no details record", ErrInvalidIdentity)
	}

	if err := r.details.Save(ctx, details); err != nil {
		return mapStoreErr(err)
	}

	return nil
}

package goIdent

import (
	"context"
	"errors"
	"testing"
)

func TestUpdateUserAuthRenameUsername(t *testing.T) {
	repo, _, done := newTestRepository(t, testRepositoryConfig())
	defer done()

	created := mustCreate(t, repo, &UserAuth{UserName: "tom"}, "correct-horse-battery")

	updated, err := repo.UpdateUserAuth(context.Background(), created, &UserAuth{
		ID:       created.ID,
		UserName: "thomas",
	}, "")
	if err != nil {
		t.Fatalf("UpdateUserAuth failed: %v", err)
	}

	if _, found := indexOwner(t, repo, "username", "tom"); found {
		t.Fatal("old username row must be released after rename")
	}
	if owner, found := indexOwner(t, repo, "username", "thomas"); !found || owner != created.ID {
		t.Fatalf("new username row missing: %d %v", owner, found)
	}
	if !updated.CreatedDate.Equal(created.CreatedDate) {
		t.Fatal("update must carry the creation timestamp forward")
	}

	// The released identifier is free for a subsequent create.
	taken := mustCreate(t, repo, &UserAuth{UserName: "tom"}, "other-password-123")
	if taken.ID == created.ID {
		t.Fatal("expected a fresh identity to claim the released username")
	}
}

func TestUpdateUserAuthEmailScenario(t *testing.T) {
	repo, _, done := newTestRepository(t, testRepositoryConfig())
	defer done()

	created := mustCreate(t, repo, &UserAuth{Email: "user1@example.org"}, "correct-horse-battery")

	if _, err := repo.UpdateUserAuth(context.Background(), created, &UserAuth{
		ID:    created.ID,
		Email: "user1a@example.org",
	}, ""); err != nil {
		t.Fatalf("UpdateUserAuth failed: %v", err)
	}

	if _, found := indexOwner(t, repo, "email", "user1@example.org"); found {
		t.Fatal("old email row must be absent")
	}
	if owner, found := indexOwner(t, repo, "email", "user1a@example.org"); !found || owner != created.ID {
		t.Fatalf("new email row missing: %d %v", owner, found)
	}

	if _, err := repo.TryAuthenticate(context.Background(), "user1a@example.org", "correct-horse-battery"); err != nil {
		t.Fatalf("authenticate against new email failed: %v", err)
	}
	if _, err := repo.TryAuthenticate(context.Background(), "user1@example.org", "correct-horse-battery"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("authenticate against released email must report ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUserAuthConflictKeepsOldMapping(t *testing.T) {
	repo, _, done := newTestRepository(t, testRepositoryConfig())
	defer done()

	holder := mustCreate(t, repo, &UserAuth{UserName: "taken"}, "correct-horse-battery")
	mover := mustCreate(t, repo, &UserAuth{UserName: "mover"}, "other-password-123")

	_, err := repo.UpdateUserAuth(context.Background(), mover, &UserAuth{
		ID:       mover.ID,
		UserName: "taken",
	}, "")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	if owner, found := indexOwner(t, repo, "username", "taken"); !found || owner != holder.ID {
		t.Fatalf("holder's row must be untouched: %d %v", owner, found)
	}
	if owner, found := indexOwner(t, repo, "username", "mover"); !found || owner != mover.ID {
		t.Fatalf("failed update must keep the mover's old row: %d %v", owner, found)
	}

	// The record itself must be unchanged.
	loaded, err := repo.GetUserAuthByID(context.Background(), mover.ID)
	if err != nil {
		t.Fatalf("GetUserAuthByID failed: %v", err)
	}
	if loaded.UserName != "mover" {
		t.Fatalf("record mutated despite failed update: %q", loaded.UserName)
	}
}

func TestUpdateUserAuthRollsBackFreshReservationOnLaterConflict(t *testing.T) {
	repo, _, done := newTestRepository(t, testRepositoryConfig())
	defer done()

	mustCreate(t, repo, &UserAuth{Email: "occupied@example.org"}, "correct-horse-battery")
	mover := mustCreate(t, repo, &UserAuth{UserName: "mover", Email: "mover@example.org"}, "other-password-123")

	_, err := repo.UpdateUserAuth(context.Background(), mover, &UserAuth{
		ID:       mover.ID,
		UserName: "renamed",
		Email:    "occupied@example.org",
	}, "")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	if _, found := indexOwner(t, repo, "username", "renamed"); found {
		t.Fatal("fresh username reservation must be compensated on email conflict")
	}
	if owner, found := indexOwner(t, repo, "username", "mover"); !found || owner != mover.ID {
		t.Fatalf("old username row must survive the failed update: %d %v", owner, found)
	}
	if owner, found := indexOwner(t, repo, "email", "mover@example.org"); !found || owner != mover.ID {
		t.Fatalf("old email row must survive the failed update: %d %v", owner, found)
	}
}

func TestUpdateUserAuthCaseOnlyChangeTouchesNoIndexes(t *testing.T) {
	repo, _, done := newTestRepository(t, testRepositoryConfig())
	defer done()

	created := mustCreate(t, repo, &UserAuth{UserName: "tom"}, "correct-horse-battery")

	updated, err := repo.UpdateUserAuth(context.Background(), created, &UserAuth{
		ID:          created.ID,
		UserName:    "TOM",
		DisplayName: "Tom",
	}, "")
	if err != nil {
		t.Fatalf("UpdateUserAuth failed: %v", err)
	}

	if owner, found := indexOwner(t, repo, "username", "tom"); !found || owner != created.ID {
		t.Fatalf("case-only rename must keep the normalized row: %d %v", owner, found)
	}
	if updated.DisplayName != "Tom" {
		t.Fatalf("profile field not updated: %+v", updated)
	}
}

func TestUpdateUserAuthMissingIdentity(t *testing.T) {
	repo, _, done := newTestRepository(t, testRepositoryConfig())
	defer done()

	_, err := repo.UpdateUserAuth(context.Background(), nil, &UserAuth{ID: 404, UserName: "ghost"}, "")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUserAuthCredentialDerivation(t *testing.T) {
	repo, _, done := newTestRepository(t, testRepositoryConfig())
	defer done()

	created := mustCreate(t, repo, &UserAuth{UserName: "tom"}, "correct-horse-battery")

	// No password supplied: hash and salt carry forward.
	kept, err := repo.UpdateUserAuth(context.Background(), created, &UserAuth{
		ID:       created.ID,
		UserName: "tom",
		LastName: "Jones",
	}, "")
	if err != nil {
		t.Fatalf("UpdateUserAuth failed: %v", err)
	}
	if kept.PasswordHash != created.PasswordHash || kept.Salt != created.Salt {
		t.Fatal("password hash must carry forward when no password supplied")
	}
	if kept.DigestHA1Hash != created.DigestHA1Hash {
		t.Fatal("digest hash must carry forward when username unchanged")
	}

	// Username change without a password: digest is username-keyed and
	// cannot be re-derived, so it is cleared.
	renamed, err := repo.UpdateUserAuth(context.Background(), kept, &UserAuth{
		ID:       created.ID,
		UserName: "thomas",
	}, "")
	if err != nil {
		t.Fatalf("UpdateUserAuth failed: %v", err)
	}
	if renamed.DigestHA1Hash != "" {
		t.Fatal("digest hash must be cleared on rename without password")
	}

	// Password supplied: everything re-derives under the new username.
	rehashed, err := repo.UpdateUserAuth(context.Background(), renamed, &UserAuth{
		ID:       created.ID,
		UserName: "thomas",
	}, "fresh-password-456")
	if err != nil {
		t.Fatalf("UpdateUserAuth failed: %v", err)
	}
	if rehashed.PasswordHash == created.PasswordHash {
		t.Fatal("password hash must change when a new password is supplied")
	}
	if rehashed.DigestHA1Hash == "" {
		t.Fatal("digest hash must be re-derived with the new password")
	}

	if _, err := repo.TryAuthenticate(context.Background(), "thomas", "fresh-password-456"); err != nil {
		t.Fatalf("authenticate with new credential failed: %v", err)
	}
}

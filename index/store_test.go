package index

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, table string) (*Store, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "gi", table)

	return store, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestReserveFreshIdentifier(t *testing.T) {
	store, done := newTestStore(t, "username")
	defer done()

	reserved, err := store.Reserve(context.Background(), "Tom", 1)
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if !reserved {
		t.Fatal("expected fresh reservation to report reserved=true")
	}

	owner, found, err := store.LookupOwner(context.Background(), "tom")
	if err != nil {
		t.Fatalf("LookupOwner failed: %v", err)
	}
	if !found || owner != 1 {
		t.Fatalf("expected owner 1, got owner=%d found=%v", owner, found)
	}
}

func TestReserveIdempotentForSameOwner(t *testing.T) {
	store, done := newTestStore(t, "username")
	defer done()

	if _, err := store.Reserve(context.Background(), "tom", 1); err != nil {
		t.Fatalf("first Reserve failed: %v", err)
	}

	reserved, err := store.Reserve(context.Background(), "  TOM ", 1)
	if err != nil {
		t.Fatalf("second Reserve failed: %v", err)
	}
	if reserved {
		t.Fatal("re-reserving an owned identifier must not report a fresh reservation")
	}
}

func TestReserveConflict(t *testing.T) {
	store, done := newTestStore(t, "username")
	defer done()

	if _, err := store.Reserve(context.Background(), "tom", 1); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	_, err := store.Reserve(context.Background(), "Tom", 2)
	if !errors.Is(err, ErrClaimed) {
		t.Fatalf("expected ErrClaimed, got %v", err)
	}

	owner, _, err := store.LookupOwner(context.Background(), "tom")
	if err != nil {
		t.Fatalf("LookupOwner failed: %v", err)
	}
	if owner != 1 {
		t.Fatalf("conflicting reserve must not steal the row, owner=%d", owner)
	}
}

func TestReserveEmptyIdentifierNoOp(t *testing.T) {
	store, done := newTestStore(t, "email")
	defer done()

	reserved, err := store.Reserve(context.Background(), "   ", 7)
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if reserved {
		t.Fatal("empty identifier must be a no-op")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	store, done := newTestStore(t, "email")
	defer done()

	if err := store.Release(context.Background(), "ghost@example.org"); err != nil {
		t.Fatalf("releasing an absent row must be a no-op, got %v", err)
	}

	if _, err := store.Reserve(context.Background(), "user1@example.org", 1); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if err := store.Release(context.Background(), "User1@Example.org"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	_, found, err := store.LookupOwner(context.Background(), "user1@example.org")
	if err != nil {
		t.Fatalf("LookupOwner failed: %v", err)
	}
	if found {
		t.Fatal("released row still present")
	}

	if err := store.Release(context.Background(), "user1@example.org"); err != nil {
		t.Fatalf("double release must be a no-op, got %v", err)
	}
}

func TestLookupOwnerAbsent(t *testing.T) {
	store, done := newTestStore(t, "username")
	defer done()

	owner, found, err := store.LookupOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LookupOwner failed: %v", err)
	}
	if found || owner != 0 {
		t.Fatalf("expected absent row, got owner=%d found=%v", owner, found)
	}
}

func TestReserveRacersSingleWinner(t *testing.T) {
	store, done := newTestStore(t, "username")
	defer done()

	winner, err := store.Reserve(context.Background(), "shared", 10)
	if err != nil || !winner {
		t.Fatalf("first racer should win: reserved=%v err=%v", winner, err)
	}

	_, err = store.Reserve(context.Background(), "shared", 11)
	if !errors.Is(err, ErrClaimed) {
		t.Fatalf("second racer should observe ErrClaimed, got %v", err)
	}
}

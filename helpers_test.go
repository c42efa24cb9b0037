package goIdent

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// stubIDGenerator hands out deterministic sequential ids.
type stubIDGenerator struct {
	next atomic.Int64
}

func (g *stubIDGenerator) Next(context.Context) (int64, error) {
	return g.next.Add(1), nil
}

func testRepositoryConfig() Config {
	cfg := defaultConfig()
	// Minimum argon2 cost so hashing does not dominate test time.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newTestRepository(t *testing.T, cfg Config) (*Repository, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIDGenerator(&stubIDGenerator{}).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return repo, rdb, func() {
		repo.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func mustCreate(t *testing.T, repo *Repository, candidate *UserAuth, password string) *UserAuth {
	t.Helper()

	created, err := repo.CreateUserAuth(context.Background(), candidate, password)
	if err != nil {
		t.Fatalf("CreateUserAuth failed: %v", err)
	}
	return created
}

func indexOwner(t *testing.T, repo *Repository, table, identifier string) (int64, bool) {
	t.Helper()

	store := repo.usernameIndex
	if table == "email" {
		store = repo.emailIndex
	}

	owner, found, err := store.LookupOwner(context.Background(), identifier)
	if err != nil {
		t.Fatalf("LookupOwner(%s, %s) failed: %v", table, identifier, err)
	}
	return owner, found
}

func waitForAuditEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()

	select {
	case event := <-sink.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return AuditEvent{}
	}
}

package goIdent

import (
	"context"
	"regexp"
	"time"

	"github.com/MrEthical07/goIdent/index"
	internalaudit "github.com/MrEthical07/goIdent/internal/audit"
	"github.com/MrEthical07/goIdent/internal/stores"
	"github.com/MrEthical07/goIdent/jwt"
	"github.com/MrEthical07/goIdent/password"
)

// Repository is the public identity surface: create, update, delete, find,
// and authenticate. Each mutating call constructs one registration session,
// drives it through the protocol, and guarantees its cleanup.
//
// Repository instances are safe for concurrent use after [Builder.Build];
// cross-session ordering comes entirely from Redis conditional writes, not
// from in-process locking.
type Repository struct {
	config Config

	usernameIndex *index.Store
	emailIndex    *index.Store
	users         *stores.UserAuthStore
	details       *stores.UserAuthDetailsStore

	idGen      IDGenerator
	hasher     *password.Hasher
	jwtManager *jwt.Manager
	audit      *internalaudit.Dispatcher
	metrics    *Metrics

	userNamePattern *regexp.Regexp
}

// Close flushes and stops the audit dispatcher. Safe on a nil receiver.
func (r *Repository) Close() {
	if r == nil {
		return
	}
	r.audit.Close()
}

// Metrics returns the repository's counter set. Never nil; when metrics are
// disabled the counters are no-ops.
func (r *Repository) Metrics() *Metrics {
	return r.metrics
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (r *Repository) AuditDropped() uint64 {
	if r == nil {
		return 0
	}
	return r.audit.Dropped()
}

func (r *Repository) emitAudit(ctx context.Context, eventType string, user *UserAuth, success bool, opErr error) {
	if r.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Success:   success,
	}
	if user != nil {
		event.UserAuthID = user.ID
		event.UserName = user.UserName
		event.Email = user.Email
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}

	r.audit.Emit(ctx, event)
}

package goIdent

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/goIdent/internal/audit"
	"github.com/MrEthical07/goIdent/internal/stores"
)

// UserAuth is the primary identity record managed by the repository. The id
// is assigned once by the injected [IDGenerator] and never changes; UserName
// and Email are globally unique while present, and at least one of the two
// is always present on a persisted record.
type UserAuth = stores.UserAuthRecord

// UserAuthDetails is one linked OAuth/provider row for an identity. Detail
// rows ride along with the identity (purged on delete) but are outside the
// uniqueness invariant.
type UserAuthDetails = stores.UserAuthDetailsRecord

// IDGenerator assigns identity ids. Ids must be monotonically increasing
// and never reused; the default generator is a Redis INCR sequence.
type IDGenerator interface {
	Next(ctx context.Context) (int64, error)
}

// IDGeneratorFunc adapts a function to the [IDGenerator] interface.
type IDGeneratorFunc func(ctx context.Context) (int64, error)

// Next calls the wrapped function.
func (f IDGeneratorFunc) Next(ctx context.Context) (int64, error) {
	return f(ctx)
}

// AuthenticatedSession is returned by [Repository.TryAuthenticateWithToken]:
// the authenticated identity plus a signed session token carrying its id,
// username, email, and the fresh SessionID.
type AuthenticatedSession struct {
	User      *UserAuth
	SessionID string
	Token     string
}

// AuditEvent is a structured audit record emitted by the repository.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the repository's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

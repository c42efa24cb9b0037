// Package audit provides asynchronous audit event dispatch for identity
// lifecycle operations (register, update, remove, authenticate).
//
// Events are emitted by the repository facade, buffered in a channel, and
// forwarded to a pluggable Sink by a single background goroutine. Emission
// never blocks a registration operation beyond the configured buffering
// policy.
package audit

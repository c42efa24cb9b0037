// Package goIdent manages identity records in Redis while enforcing that
// usernames and email addresses stay globally unique — a constraint the
// backing store cannot express natively, because it offers only single-key
// conditional writes and no cross-key transactions.
//
// Uniqueness is synthesized from two per-attribute index tables
// (username→id, email→id) kept consistent with the primary record by an
// explicit registration protocol: a per-operation state machine that
// reserves index rows with conditional writes before persisting the record,
// releases superseded rows only afterwards, and compensates (releases fresh
// reservations) when a later step fails. Two sessions racing for the same
// identifier are ordered solely by the backend's compare-and-swap: exactly
// one reserve succeeds, the other fails with [ErrAlreadyExists].
//
// # Architecture boundaries
//
// goIdent is the public surface. It exposes [Repository], [Builder],
// [Config], and value types. Index rows live in the index package, primary
// records and sequences under internal/stores, credential hashing in
// password, session tokens in jwt. The registration state machine is
// private to this package.
//
// # Consistency contract
//
// Every public operation either returns a fully consistent identity or an
// error; no partially-updated record is ever returned. The protocol
// guarantees no two identities ever hold the same reserved identifier, at
// the cost of tolerating transient orphaned index rows after a crash
// mid-sequence (best-effort compensation is logged and swallowed so it
// never masks the original failure).
package goIdent

// Package index implements the per-attribute uniqueness index tables that
// back goIdent's synthesized uniqueness constraint.
//
// Each [Store] owns one Redis key namespace mapping a normalized identifier
// (username or email) to the identity id that claims it. Redis offers no
// multi-key transactions usable across the primary table and both indexes,
// so uniqueness is approximated by reserve-before-write: a reservation is a
// single conditional write (server-side Lua) that succeeds only when the
// identifier is unclaimed or already claimed by the same owner.
//
// # Architecture boundaries
//
// This package owns index rows only. It never reads or writes primary
// identity records and never decides sequencing; the registration state
// machine in the root package orders reserve/release calls.
//
// # What this package must NOT do
//
//   - Retry a rejected reservation.
//   - Delete rows it did not reserve (Release is the caller's decision).
//   - Apply any normalization beyond trim + case-fold.
package index

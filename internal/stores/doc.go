// Package stores provides the Redis-backed persistence for goIdent's
// primary identity records, their linked OAuth detail rows, and the id
// sequence.
//
// # Design
//
// Identity records are JSON blobs keyed by identity id. Creation is a
// conditional write (SET NX) so a second create for the same id is rejected
// at the backend rather than detected by a racy read. Detail rows live
// under their own provider-scoped keys, with a per-identity Redis set as
// the secondary index used for bulk purge. The sequence is a bare INCR
// counter: monotonic, never reused.
//
// # Architecture boundaries
//
// This package owns primary-table persistence only. Uniqueness index rows
// belong to the index package; the ordering of index writes relative to
// record writes belongs to the registration state machine in the root
// package.
//
// # What this package must NOT do
//
//   - Import goIdent or any sibling internal package.
//   - Touch uniqueness index keys.
//   - Retry a rejected conditional create.
package stores

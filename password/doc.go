// Package password implements goIdent's credential hashing: argon2id
// password hashes with an independently stored salt, and the RFC 2617
// digest HA1 used for digest authentication.
//
// # Design
//
// Hash and salt are returned (and persisted) as two separate base64 fields
// rather than a combined PHC string, because the identity record models
// them as independent attributes. Verification recomputes argon2id with
// the stored salt and compares in constant time.
//
// # What this package must NOT do
//
//   - Persist anything (storage belongs to the caller).
//   - Log plaintext passwords or derived keys.
//   - Use non-constant-time comparisons.
package password

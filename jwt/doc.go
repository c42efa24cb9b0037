// Package jwt issues and parses the signed session tokens goIdent hands
// out after successful authentication.
//
// # Design
//
// Tokens are standard JWTs (github.com/golang-jwt/jwt/v5) carrying the
// identity id, username, email, and a random session id. hs256 and ed25519
// signing are supported; the manager validates key material at
// construction so signing never fails for configuration reasons at request
// time.
//
// # What this package must NOT do
//
//   - Store sessions (tokens are self-contained).
//   - Import goIdent or touch Redis.
package jwt

package goIdent

import "errors"

var (
	// ErrInvalidIdentity is returned when a candidate identity fails
	// structural validation (bad username pattern, malformed email, or
	// neither identifier present).
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrAlreadyExists is returned when a username or email is already
	// claimed by a different identity id.
	ErrAlreadyExists = errors.New("identifier already exists")
	// ErrAlreadyRegistered is returned when a primary record create collides
	// with an existing record under the same id.
	ErrAlreadyRegistered = errors.New("identity already registered")
	// ErrUserNotFound is returned by lookups, updates, and removes against a
	// missing identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by TryAuthenticate when the identity
	// exists but the credential does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRedisUnavailable is returned when the backing store cannot be
	// reached mid-operation.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrSessionTokensDisabled is returned by TryAuthenticateWithToken when
	// the JWT layer is not configured.
	ErrSessionTokensDisabled = errors.New("session tokens disabled")
	// ErrRepositoryNotReady is returned when a Repository method is called
	// on a nil receiver.
	ErrRepositoryNotReady = errors.New("repository not initialized")
)

// errInvalidTransition reports a trigger fired from a state that has no
// transition for it. It only surfaces on protocol bugs, never on user input.
var errInvalidTransition = errors.New("invalid registration transition")

package goIdent

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goIdent/index"
	"github.com/MrEthical07/goIdent/password"
	"github.com/google/uuid"
)

// TryAuthenticate resolves identifier (username or email) and verifies the
// password against the stored argon2id hash. It returns the identity on
// success, [ErrUserNotFound] when no identity matches the identifier, and
// [ErrInvalidCredentials] when the identity exists but the password does
// not verify. There is no partially-authenticated outcome.
func (r *Repository) TryAuthenticate(ctx context.Context, identifier, plainPassword string) (*UserAuth, error) {
	if r == nil {
		return nil, ErrRepositoryNotReady
	}

	user, err := r.GetUserAuthByUserName(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			r.metrics.Inc(MetricAuthFailure)
			r.emitAudit(ctx, "identity.authenticate", nil, false, err)
		}
		return nil, err
	}

	if user.PasswordHash == "" || user.Salt == "" {
		r.metrics.Inc(MetricAuthFailure)
		r.emitAudit(ctx, "identity.authenticate", user, false, ErrInvalidCredentials)
		return nil, fmt.Errorf("%w: no password credential on record", ErrInvalidCredentials)
	}

	ok, err := r.hasher.Verify(plainPassword, user.PasswordHash, user.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !ok {
		r.metrics.Inc(MetricAuthFailure)
		r.emitAudit(ctx, "identity.authenticate", user, false, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	r.metrics.Inc(MetricAuthSuccess)
	r.emitAudit(ctx, "identity.authenticate", user, true, nil)

	return user, nil
}

// TryAuthenticateWithToken authenticates and, on success, populates a
// session: a fresh session id and a signed JWT carrying the identity's id,
// username, and email. Requires Config.JWT.Enabled.
func (r *Repository) TryAuthenticateWithToken(ctx context.Context, identifier, plainPassword string) (*AuthenticatedSession, error) {
	if r == nil {
		return nil, ErrRepositoryNotReady
	}
	if r.jwtManager == nil {
		return nil, ErrSessionTokensDisabled
	}

	user, err := r.TryAuthenticate(ctx, identifier, plainPassword)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	token, err := r.jwtManager.CreateSession(user.ID, user.UserName, user.Email, sessionID)
	if err != nil {
		return nil, err
	}

	return &AuthenticatedSession{
		User:      user,
		SessionID: sessionID,
		Token:     token,
	}, nil
}

// VerifyDigestCredential checks a password against the stored digest HA1
// for identities that authenticate via digest auth. Identities without a
// username or a stored HA1 never verify.
func (r *Repository) VerifyDigestCredential(ctx context.Context, identifier, plainPassword string) (bool, error) {
	if r == nil {
		return false, ErrRepositoryNotReady
	}

	user, err := r.GetUserAuthByUserName(ctx, identifier)
	if err != nil {
		return false, err
	}
	if user.DigestHA1Hash == "" || user.UserName == "" {
		return false, nil
	}

	return verifyDigest(user, r.config.Digest.Realm, plainPassword), nil
}

func verifyDigest(user *UserAuth, realm, plainPassword string) bool {
	return password.VerifyDigestHA1(index.Normalize(user.UserName), realm, plainPassword, user.DigestHA1Hash)
}

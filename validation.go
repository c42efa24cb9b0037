package goIdent

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/MrEthical07/goIdent/index"
)

// validateUserAuth applies the structural rules every candidate must pass
// before the registration machine is allowed to touch an index table.
func validateUserAuth(pattern *regexp.Regexp, maxEmailLength int, candidate *UserAuth) error {
	if candidate == nil {
		return fmt.Errorf("%w: no candidate record", ErrInvalidIdentity)
	}

	username := index.Normalize(candidate.UserName)
	email := index.Normalize(candidate.Email)

	if username == "" && email == "" {
		return fmt.Errorf("%w: username or email required", ErrInvalidIdentity)
	}

	if username != "" {
		if strings.Contains(username, "@") {
			return fmt.Errorf("%w: username must not contain '@'", ErrInvalidIdentity)
		}
		if !pattern.MatchString(username) {
			return fmt.Errorf("%w: username %q fails allowed pattern", ErrInvalidIdentity, username)
		}
	}

	if email != "" {
		if len(email) > maxEmailLength {
			return fmt.Errorf("%w: email exceeds %d characters", ErrInvalidIdentity, maxEmailLength)
		}
		parsed, err := mail.ParseAddress(email)
		if err != nil || parsed.Address != email {
			return fmt.Errorf("%w: email %q is not a valid address", ErrInvalidIdentity, email)
		}
	}

	return nil
}

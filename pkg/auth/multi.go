package auth

import (
	"context"
	"github.com/cockroachdb/errors"
)

// MultiAuthenticator implements the Authenticator interface by wrapping a set of
// existing Authenticator(s). This is useful for combining multiple authentication
// sources into a single interface, e.g. while migrating users between stores.
// Authenticator(s) are executed in order: the first to succeed is used, an
// authenticator rejecting the credentials passes them on to the next one, and any
// other error (a bad request) stops the chain.
type MultiAuthenticator []Authenticator

// Authenticate implements the Authenticator interface.
func (a MultiAuthenticator) Authenticate(
	ctx context.Context,
	creds InsecureCredentials,
) (Principal, error) {
	var last error
	for _, auth := range a {
		p, err := auth.Authenticate(ctx, creds)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, InvalidCredentials) {
			return Principal{}, err
		}
		last = err
	}
	if last == nil {
		return Principal{}, rejected(NoSuchUser)
	}
	return Principal{}, last
}

// Package auth verifies username/password credentials against user records held in
// a document store.
package auth

import (
	"context"
	"github.com/arya-analytics/gatekeeper/pkg/future"
	"github.com/arya-analytics/gatekeeper/pkg/store"
)

// Authenticator is an interface for validating the identity of a particular entity (
// i.e. they are who they say they are).
type Authenticator interface {
	// Authenticate validates the identity of the entity with the given credentials.
	// If the credentials are invalid, an error satisfying
	// errors.Is(err, InvalidCredentials) is returned.
	Authenticate(ctx context.Context, creds InsecureCredentials) (Principal, error)
}

// InsecureCredentials is a flat set of credential fields keyed by the field names of
// a Config. It holds a cleartext password and must never be persisted.
type InsecureCredentials map[string]string

// Principal is the identity returned by a successful authentication.
type Principal struct {
	// Key is the identifier of the matched user record.
	Key string `json:"key"`
	// Username is the username the principal authenticated with.
	Username string `json:"username"`
	// Attributes holds the fields of the user record, excluding the password.
	Attributes store.Document `json:"attributes"`
}

// AuthenticateAsync runs a.Authenticate on its own goroutine.
func AuthenticateAsync(
	ctx context.Context,
	a Authenticator,
	creds InsecureCredentials,
) *future.Future[Principal] {
	return future.Go(ctx, func(ctx context.Context) (Principal, error) {
		return a.Authenticate(ctx, creds)
	})
}

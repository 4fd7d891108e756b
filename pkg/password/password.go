// Package password holds the hash strategies used to store and verify user passwords.
// Hashers are registered in a Registry under a scheme identifier, and every value a
// Registry produces is tagged with the scheme that made it so records hashed under
// different schemes can live side by side.
package password

import (
	"crypto/rand"
	"encoding/base64"
	"github.com/cockroachdb/errors"
)

// Raw is a cleartext password. It should never be persisted or logged.
type Raw string

// Hashed is the encoded representation of a password as it is stored in a user record.
type Hashed string

const saltSize = 16

// NewSalt generates a random salt suitable for enrolling a new password.
func NewSalt() (string, error) {
	b := make([]byte, saltSize)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "[password] - failed to generate salt")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

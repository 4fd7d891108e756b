package auth

import (
	"github.com/arya-analytics/gatekeeper/pkg/password"
	"github.com/cockroachdb/errors"
)

// Config maps credentials onto user records.
type Config struct {
	// UsernameField is the record field (and credential key) holding the username.
	UsernameField string
	// PasswordField is the record field (and credential key) holding the password.
	PasswordField string
	// CollectionName is the collection user records are stored in.
	CollectionName string
	// DefaultScheme is the hash scheme used to verify records whose password field
	// isn't tagged with a scheme. Under any scheme other than plain, untagged values
	// must hold the base64 encoded digest, derived with an empty salt.
	DefaultScheme string
}

// DefaultConfig returns the configuration used for fields left empty in NewVerifier.
// Untagged passwords are compared as cleartext.
func DefaultConfig() Config {
	return Config{
		UsernameField:  "username",
		PasswordField:  "password",
		CollectionName: "user",
		DefaultScheme:  password.SchemePlain,
	}
}

// Override returns a copy of c with every non-empty field of other applied.
func (c Config) Override(other Config) Config {
	if other.UsernameField != "" {
		c.UsernameField = other.UsernameField
	}
	if other.PasswordField != "" {
		c.PasswordField = other.PasswordField
	}
	if other.CollectionName != "" {
		c.CollectionName = other.CollectionName
	}
	if other.DefaultScheme != "" {
		c.DefaultScheme = other.DefaultScheme
	}
	return c
}

// Credentials builds the credentials for username and pwd under c's field names.
func (c Config) Credentials(username string, pwd password.Raw) InsecureCredentials {
	return InsecureCredentials{c.UsernameField: username, c.PasswordField: string(pwd)}
}

// Validate checks that every field is set and the username and password fields
// are distinct.
func (c Config) Validate() error {
	switch {
	case c.UsernameField == "":
		return errors.Wrap(BadRequest, "username field not configured")
	case c.PasswordField == "":
		return errors.Wrap(BadRequest, "password field not configured")
	case c.UsernameField == c.PasswordField:
		return errors.Wrap(BadRequest, "username and password fields must differ")
	case c.CollectionName == "":
		return errors.Wrap(BadRequest, "collection not configured")
	case c.DefaultScheme == "":
		return errors.Wrap(BadRequest, "default scheme not configured")
	}
	return nil
}

package auth

import (
	"github.com/cockroachdb/errors"
)

var (
	// BadRequest is returned when the configuration or the supplied credentials are
	// missing a field. It is a caller error, not an authentication verdict.
	BadRequest = errors.New("[auth] - bad request")
	// InvalidCredentials is returned for every failed authentication. The reasons
	// below are attached as marks so they can be told apart with errors.Is without
	// showing up in the error message.
	InvalidCredentials = errors.New("[auth] - invalid credentials")
	// RegistrationFailed is returned when enrolling a user fails.
	RegistrationFailed = errors.New("[auth] - registration failed")
	// UpdateFailed is returned when rewriting an authenticated user's record fails.
	UpdateFailed = errors.New("[auth] - update failed")
	// UsernameTaken is returned when renaming a user to a username another record
	// already holds.
	UsernameTaken = errors.New("[auth] - username already taken")
)

// Reasons attached to InvalidCredentials. Use Reason to recover them.
var (
	NoSuchUser      = errors.New("no such user")
	AmbiguousUser   = errors.New("ambiguous user")
	CorruptRecord   = errors.New("corrupt credential record")
	InvalidPassword = errors.New("invalid password")
	// Fault marks failures caused by the store or the hash registry rather than by
	// the credentials themselves.
	Fault = errors.New("internal fault")
)

var reasons = []error{NoSuchUser, AmbiguousUser, CorruptRecord, InvalidPassword, Fault}

// Reason returns the reason an authentication failed, or nil if err isn't an
// authentication failure.
func Reason(err error) error {
	if !errors.Is(err, InvalidCredentials) {
		return nil
	}
	for _, r := range reasons {
		if errors.Is(err, r) {
			return r
		}
	}
	return nil
}

func rejected(reason error) error {
	return errors.Mark(errors.WithStack(InvalidCredentials), reason)
}

// fault wraps an internal failure as an authentication failure, keeping cause in the
// chain so errors.Is still matches it.
func fault(cause error, msg string) error {
	return errors.Mark(errors.Mark(errors.Wrap(cause, msg), InvalidCredentials), Fault)
}

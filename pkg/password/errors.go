package password

import "github.com/cockroachdb/errors"

var (
	// UnknownScheme is returned when a hash scheme is not registered.
	UnknownScheme = errors.New("[password] - unknown hash scheme")
	// MalformedHash is returned when a stored hash or its parameters can't be parsed.
	MalformedHash = errors.New("[password] - malformed hash")
)

func unknownScheme(scheme string) error {
	return errors.Wrapf(UnknownScheme, "scheme %q", scheme)
}

func malformed(err error, format string, args ...interface{}) error {
	if err == nil {
		return errors.Wrapf(MalformedHash, format, args...)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), MalformedHash)
}

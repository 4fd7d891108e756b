package store

import "github.com/cockroachdb/errors"

// Error marks every failure raised by a Store backend.
var Error = errors.New("[store] - query failed")

// Wrap wraps err with msg and marks it as a store Error. It returns nil if err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), Error)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), Error)
}

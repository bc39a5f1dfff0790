// Package errdefs holds the error kinds shared by every generator package.
// Callers wrap them with context and match with errors.Is.
package errdefs

import "github.com/pkg/errors"

var (
	// ErrConfiguration marks an unknown name (scale, catalog, strategy,
	// boundary). It is recoverable: the returned value is the documented
	// default and the caller should log a warning.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidParameter marks an out-of-range numeric parameter. Construction fails.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrCapacityExceeded marks a grammar rewrite that outgrew its buffer.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrSequenceExhausted marks a playback cursor that reached the end of a
	// precomputed sequence.
	ErrSequenceExhausted = errors.New("sequence exhausted")
)

// Invalid wraps ErrInvalidParameter with a formatted message.
func Invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}

// Configuration wraps ErrConfiguration with a formatted message.
func Configuration(format string, args ...any) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

package encoding

import (
	"errors"
	"fmt"
)

// Decode failures. The transport logs and drops the containing packet on any
// of these; they never propagate into the send path.
var (
	// ErrTruncatedInput means the stream ended before the record did.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrInvalidEnumValue means a decoded integer is outside its enum range.
	ErrInvalidEnumValue = errors.New("invalid enum value")

	// ErrUnknownVariant means a variant key has no registered concrete type.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrUnsupportedVersion means a transport version byte was not 2.
	ErrUnsupportedVersion = errors.New("unsupported transport version")

	// ErrInvariantViolation means a reserved or computed field did not hold
	// its required value, or a schema was driven outside its contract.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrMissingParameter means a required field was absent at encode time.
	ErrMissingParameter = errors.New("missing parameter")
)

// fieldError wraps err with the struct field path that produced it.
func fieldError(path string, err error) error {
	return fmt.Errorf("field %s: %w", path, err)
}

package jaus

import (
	"errors"
	"fmt"

	"github.com/fhackett/gojaus/messages"
)

var (
	// ErrHandlerCollision means two services of one component registered the
	// same message code. This is a configuration error and fails component
	// construction.
	ErrHandlerCollision = errors.New("jaus: handler collision")

	// ErrMissingHandler means a message had no registered handler. Dispatch
	// logs and drops such messages; the error only surfaces on direct
	// DispatchMessage calls.
	ErrMissingHandler = errors.New("jaus: no handler for message")

	// ErrClosed means the component's dispatch loop has been stopped.
	ErrClosed = errors.New("jaus: component closed")
)

func collisionError(code messages.Code, a, b string) error {
	return fmt.Errorf("%w: code %v claimed by %q and %q", ErrHandlerCollision, code, a, b)
}

// Package recovery guards calls into caller-supplied code: change callbacks,
// update functions and validators. A panic there is logged and turned into
// an error instead of taking the editing session down.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ErrPanic matches every error returned for a recovered panic.
var ErrPanic = errors.New("panic recovered")

// PanicError carries the value a guarded function panicked with.
type PanicError struct {
	Operation string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Operation, e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrPanic
}

// RecoverToError calls fn and converts a panic into a *PanicError.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "validate", func() error {
//	    return validate.Leaf(l, lookup)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = &PanicError{Operation: operation, Value: r}
		}
	}()

	return fn()
}

// RecoverToValue is RecoverToError for functions that also return a value.
// On panic the zero value is returned.
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			var zero T
			result = zero
			err = &PanicError{Operation: operation, Value: r}
		}
	}()

	return fn()
}

// Recover calls fn and logs a panic without returning it. Use it for
// notifications whose failure must not undo the work already published.
func Recover(logger *slog.Logger, operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in callback",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	fn()
}

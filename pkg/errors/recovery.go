package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a recovered panic converted into an error value.
type PanicError struct {
	// PanicValue is the value the panic was raised with.
	PanicValue interface{}

	// StackTrace is the goroutine stack captured at recovery time.
	StackTrace string

	// Operation names the call during which the panic occurred.
	Operation string
}

// NewPanicError captures the current stack and builds a PanicError for the
// given operation.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns nil; the panic value is not treated as a wrapped error.
func (e *PanicError) Unwrap() error { return nil }

// String renders the error together with its stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("%s\nStack trace:\n%s", e.Error(), e.StackTrace)
}

// Recover converts a panic into an error on the deferred path:
//
//	func (m *Model) Fit(X, y mat.Matrix) (err error) {
//	    defer errors.Recover(&err, "Model.Fit")
//	    ...
//	}
//
// When the function has already assigned an error before panicking, both
// survive in the result and Is still matches the original error.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
		return
	}
	*err = NewPanicError(operation, r)
}

// SafeExecute runs fn, converting a panic inside it into an error. Errors
// returned by fn itself pass through untouched.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}

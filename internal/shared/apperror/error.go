package apperror

import "fmt"

type AppError struct {
	Code       string // Error code (e.g., INVALID_INPUT)
	Message    string // User-friendly message
	HTTPStatus int    // HTTP status code
	Err        error  // Wrapped original error (optional)

	origin *AppError
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is e or the sentinel e was derived from via
// WithCause or WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t == e || (e.origin != nil && t == e.origin)
}

// WithCause returns a copy of e that wraps cause.
func (e *AppError) WithCause(cause error) *AppError {
	cp := e.derive()
	cp.Err = cause
	return cp
}

// WithMessage returns a copy of e with a more specific client message.
func (e *AppError) WithMessage(message string) *AppError {
	cp := e.derive()
	cp.Message = message
	return cp
}

func (e *AppError) derive() *AppError {
	cp := *e
	if cp.origin == nil {
		cp.origin = e
	}
	return &cp
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        nil,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Internal wraps a storage or infrastructure failure. The cause is kept for
// logging; clients only ever see ErrInternal's message.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return ErrInternal.WithCause(err)
}

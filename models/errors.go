package models

import "errors"

// ValidationError reports caller input that violates a cart or catalog
// invariant: zero-quantity cart, insufficient stock, unavailable product.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports a missing cart, product or line item.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

var (
	// ErrAmbiguousIntent means no structured edit intent could be extracted
	// from the model reply. The cart must be left untouched.
	ErrAmbiguousIntent = errors.New("ambiguous intent")

	// ErrIntentUnavailable means the generation service failed, throttled or
	// timed out.
	ErrIntentUnavailable = errors.New("generation service unavailable")

	// ErrTransport means outbound message delivery failed. The cart mutation
	// that preceded it is not rolled back.
	ErrTransport = errors.New("message delivery failed")
)

func NewValidationError(msg string) error { return &ValidationError{Message: msg} }

func NewNotFoundError(msg string) error { return &NotFoundError{Message: msg} }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

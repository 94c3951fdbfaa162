package errors

import (
	"errors"
	"fmt"
)

var (
	// Validation errors
	ErrInvalidAmount        = errors.New("amount must be greater than 0")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrUnsupportedProvider  = errors.New("unsupported payment provider")
	ErrRefundAmountRequired = errors.New("refund amount is required for this provider")
	ErrMissingCredentials   = errors.New("missing provider credentials")

	// Provider errors
	ErrProviderRejected       = errors.New("rejected by payment provider")
	ErrProviderUnavailable    = errors.New("payment provider unavailable")
	ErrApprovalLinkMissing    = errors.New("provider response has no approval link")
	ErrCustomerCreationFailed = errors.New("customer creation failed")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrOperationNotSupported  = errors.New("operation not supported by provider")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// TransportError marks a failure that never produced a provider response:
// connection refused, timeout, TLS failure, malformed body. Callers use it to
// tell "retry may be safe" apart from a real provider rejection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err as a transport-class failure.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// IsTransport reports whether err is a transport-class failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te) || errors.Is(err, ErrProviderUnavailable)
}

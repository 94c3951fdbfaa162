package gateway

import (
	goerrors "errors"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/sony/gobreaker/v2"
)

// FailureKind classifies a failed result so callers can decide retry policy
// without parsing the message. Transport failures never produced a provider
// response and may be retried; provider rejections and validation failures
// must not be.
type FailureKind string

const (
	KindNone       FailureKind = ""
	KindValidation FailureKind = "validation"
	KindProvider   FailureKind = "provider"
	KindTransport  FailureKind = "transport"
)

// Result is the gateway's uniform envelope: either a success carrying the
// normalized {amount, currency, provider} triple plus the provider-specific
// payload, or a failure carrying a message and its kind. No provider error
// type ever crosses this boundary.
type Result struct {
	Success  bool           `json:"success"`
	Amount   float64        `json:"amount,omitempty"`
	Currency string         `json:"currency,omitempty"`
	Provider string         `json:"provider,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
	Error    string         `json:"error,omitempty"`
	Kind     FailureKind    `json:"kind,omitempty"`
}

func success(provider string, amount float64, currency string, payload map[string]any) *Result {
	return &Result{
		Success:  true,
		Amount:   amount,
		Currency: currency,
		Provider: provider,
		Payload:  payload,
	}
}

func failure(provider string, err error) *Result {
	return &Result{
		Success:  false,
		Provider: provider,
		Error:    err.Error(),
		Kind:     classify(err),
	}
}

func classify(err error) FailureKind {
	var ve *domainErrors.ValidationError
	switch {
	case goerrors.As(err, &ve),
		goerrors.Is(err, domainErrors.ErrInvalidAmount),
		goerrors.Is(err, domainErrors.ErrInvalidCurrency),
		goerrors.Is(err, domainErrors.ErrUnsupportedProvider),
		goerrors.Is(err, domainErrors.ErrRefundAmountRequired):
		return KindValidation
	case domainErrors.IsTransport(err),
		goerrors.Is(err, gobreaker.ErrOpenState),
		goerrors.Is(err, gobreaker.ErrTooManyRequests):
		return KindTransport
	default:
		return KindProvider
	}
}

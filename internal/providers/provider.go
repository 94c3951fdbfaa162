package providers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Descriptor is the static, read-only description of a payment provider.
type Descriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Currencies  []string `json:"currencies"`
	Fees        string   `json:"fees"`
	Icon        string   `json:"icon"`

	// Fee schedule backing the human-readable Fees string.
	FeePercent float64 `json:"-"`
	FeeFixed   float64 `json:"-"`
}

// FeeBreakdown is the result of applying a provider's fee schedule to an amount.
type FeeBreakdown struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Fixed      float64 `json:"fixed"`
	Total      float64 `json:"total"`
}

// FeeFor applies the descriptor's fee schedule to a major-unit amount.
func (d Descriptor) FeeFor(amount float64) FeeBreakdown {
	a := decimal.NewFromFloat(amount)
	pct := a.Mul(decimal.NewFromFloat(d.FeePercent)).Div(decimal.NewFromInt(100)).Round(2)
	fixed := decimal.NewFromFloat(d.FeeFixed)

	pctF, _ := pct.Float64()
	totalF, _ := a.Add(pct).Add(fixed).Float64()

	return FeeBreakdown{
		Amount:     amount,
		Percentage: pctF,
		Fixed:      d.FeeFixed,
		Total:      totalF,
	}
}

// FeeFormula renders the fee schedule the way descriptors present it,
// e.g. "2.9% + $0.30" or "1% + $0.00".
func FeeFormula(percent, fixed float64) string {
	return fmt.Sprintf("%s%% + $%s",
		decimal.NewFromFloat(percent).String(),
		decimal.NewFromFloat(fixed).StringFixed(2),
	)
}

// IntentRequest holds the normalized input for opening a payment intent.
type IntentRequest struct {
	Amount   float64 // major units, already validated > 0
	Currency string
	Metadata map[string]string
}

// IntentResponse is what a provider returns for a newly opened intent.
type IntentResponse struct {
	// Reference is the provider-side identifier a caller needs to confirm the
	// payment later: an intent id, an order id, a deposit address or a local ref.
	Reference string
	Payload   map[string]any
}

// ConfirmResponse reports the outcome of confirming a payment.
type ConfirmResponse struct {
	Amount   float64 // major units; zero when the provider cannot report one
	Currency string
	Payload  map[string]any
}

// RefundRequest holds the input for refunding a confirmed payment.
type RefundRequest struct {
	Reference string
	// Amount nil means "refund in full, let the provider compute the amount"
	// where the provider supports that. It is not the same as zero.
	Amount   *float64
	Currency string // original payment currency; empty falls back per provider
	Reason   string
}

// RefundResponse reports a completed refund.
type RefundResponse struct {
	RefundID string
	Amount   float64
	Currency string
	Payload  map[string]any
}

// CustomerRequest holds the input for registering a provider-side customer.
type CustomerRequest struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// CustomerResponse is a provider-side customer record.
type CustomerResponse struct {
	ID    string
	Email string
	Name  string
}

// SetupIntentResponse carries the continuation token for saving a payment
// method without charging.
type SetupIntentResponse struct {
	ID           string
	ClientSecret string
}

// PaymentMethod is a saved payment method summary.
type PaymentMethod struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// PaymentRecord is one entry of a customer's payment history.
type PaymentRecord struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	CreatedAt int64   `json:"created_at"`
}

// Provider is one payment provider family behind the gateway. Implementations
// translate the normalized request into the provider's own calling convention
// and report failures as errors; the gateway folds those into its result
// envelope. No implementation retries, caches or persists anything.
type Provider interface {
	// Name returns the provider id used for dispatch ("stripe", "paypal", ...).
	Name() string
	// Descriptor returns the static provider description.
	Descriptor() Descriptor
	// CreateIntent opens a payment intent with the provider.
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error)
	// Confirm settles a previously created intent identified by reference.
	Confirm(ctx context.Context, reference string) (*ConfirmResponse, error)
	// Refund reverses a confirmed payment.
	Refund(ctx context.Context, req RefundRequest) (*RefundResponse, error)
}

// CustomerRegistry is implemented by providers that keep a durable customer
// record (the card-style family). The gateway routes customer operations to
// the first registered provider implementing it.
type CustomerRegistry interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*CustomerResponse, error)
	CreateSetupIntent(ctx context.Context, customerID string, metadata map[string]string) (*SetupIntentResponse, error)
	ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error)
	ListPayments(ctx context.Context, customerID string) ([]PaymentRecord, error)
}

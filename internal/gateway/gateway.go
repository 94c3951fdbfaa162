// Package gateway is the single entry point for money movement across
// payment providers. It validates input, dispatches to the provider
// implementation behind a registry, and folds every outcome into one result
// envelope. It persists nothing and never retries: callers own both the
// payment record and the retry policy.
package gateway

import (
	"context"
	"time"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/microlend/paygate/internal/domain/money"
	"github.com/microlend/paygate/internal/infrastructure/observability"
	"github.com/microlend/paygate/internal/providers"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Gateway dispatches payment operations to registered providers.
type Gateway struct {
	registry        *providers.Registry
	defaultProvider string
	logger          zerolog.Logger
	metrics         *observability.Metrics
	tracer          trace.Tracer
}

type Option func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithMetrics enables operation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithDefaultProvider sets the provider used when a request names none.
func WithDefaultProvider(name string) Option {
	return func(g *Gateway) { g.defaultProvider = name }
}

// New builds a gateway over the given registry. Provider construction
// (credentials, environment selection) happens before this point, in
// providers.FromConfig or in the test that injects fakes.
func New(registry *providers.Registry, opts ...Option) *Gateway {
	g := &Gateway{
		registry:        registry,
		defaultProvider: "stripe",
		logger:          zerolog.Nop(),
		tracer:          otel.Tracer("paygate.gateway"),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// CreateIntentRequest holds the input for opening a payment intent.
type CreateIntentRequest struct {
	Amount   float64
	Currency string
	Metadata map[string]string
	Provider string // empty selects the default provider
}

// RefundRequest holds the input for refunding a confirmed payment.
type RefundRequest struct {
	Reference string
	Amount    *float64 // nil requests a full refund where supported
	Currency  string   // original payment currency, empty falls back per provider
	Reason    string
	Provider  string
}

// CustomerRequest holds the input for registering a provider-side customer.
type CustomerRequest struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// ListProviders returns the static descriptor of every registered provider.
func (g *Gateway) ListProviders() map[string]providers.Descriptor {
	return g.registry.Descriptors()
}

// ProviderFees applies the provider's static fee schedule to an amount.
// Pure calculation, no provider call.
func (g *Gateway) ProviderFees(amount float64, provider, currency string) (providers.FeeBreakdown, error) {
	if err := money.ValidateAmount(amount); err != nil {
		return providers.FeeBreakdown{}, err
	}
	p, _, err := g.registry.Get(g.providerOrDefault(provider))
	if err != nil {
		return providers.FeeBreakdown{}, err
	}
	return p.Descriptor().FeeFor(amount), nil
}

// CreatePaymentIntent opens a payment intent with the selected provider and
// returns the normalized envelope. The amount is validated before any
// provider call; an unknown provider never reaches the network.
func (g *Gateway) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) *Result {
	providerID := g.providerOrDefault(req.Provider)
	ctx, span := g.startSpan(ctx, "gateway.create_payment_intent", providerID)
	defer span.End()

	if err := money.ValidateAmount(req.Amount); err != nil {
		return g.fail("create_intent", providerID, err)
	}

	p, breaker, err := g.registry.Get(providerID)
	if err != nil {
		return g.fail("create_intent", providerID, err)
	}

	start := time.Now()
	res, err := breaker.Execute(func() (any, error) {
		return p.CreateIntent(ctx, providers.IntentRequest{
			Amount:   req.Amount,
			Currency: req.Currency,
			Metadata: req.Metadata,
		})
	})
	g.observe("create_intent", providerID, start, err)
	if err != nil {
		return g.fail("create_intent", providerID, err)
	}

	intent := res.(*providers.IntentResponse)
	payload := clonePayload(intent.Payload)
	payload["reference"] = intent.Reference

	g.logger.Info().
		Str("provider", providerID).
		Str("reference", intent.Reference).
		Float64("amount", req.Amount).
		Msg("payment intent created")

	return success(providerID, req.Amount, money.NormalizeCurrency(req.Currency), payload)
}

// ConfirmPayment settles a previously created intent. The amount and currency
// in the result are recovered from the provider's response, converted back to
// major units and canonical lower-case.
func (g *Gateway) ConfirmPayment(ctx context.Context, reference, provider string) *Result {
	providerID := g.providerOrDefault(provider)
	ctx, span := g.startSpan(ctx, "gateway.confirm_payment", providerID)
	defer span.End()

	p, breaker, err := g.registry.Get(providerID)
	if err != nil {
		return g.fail("confirm", providerID, err)
	}

	start := time.Now()
	res, err := breaker.Execute(func() (any, error) {
		return p.Confirm(ctx, reference)
	})
	g.observe("confirm", providerID, start, err)
	if err != nil {
		return g.fail("confirm", providerID, err)
	}

	confirm := res.(*providers.ConfirmResponse)

	g.logger.Info().
		Str("provider", providerID).
		Str("reference", reference).
		Float64("amount", confirm.Amount).
		Msg("payment confirmed")

	return success(providerID, confirm.Amount, money.NormalizeCurrency(confirm.Currency), confirm.Payload)
}

// CreateRefund reverses a confirmed payment. A nil amount requests a full
// refund; providers that cannot compute one reject the request before any
// network call. On success the caller is expected to mark its own payment
// record refunded.
func (g *Gateway) CreateRefund(ctx context.Context, req RefundRequest) *Result {
	providerID := g.providerOrDefault(req.Provider)
	ctx, span := g.startSpan(ctx, "gateway.create_refund", providerID)
	defer span.End()

	if req.Amount != nil {
		if err := money.ValidateAmount(*req.Amount); err != nil {
			return g.fail("refund", providerID, err)
		}
	}

	p, breaker, err := g.registry.Get(providerID)
	if err != nil {
		return g.fail("refund", providerID, err)
	}

	start := time.Now()
	res, err := breaker.Execute(func() (any, error) {
		return p.Refund(ctx, providers.RefundRequest{
			Reference: req.Reference,
			Amount:    req.Amount,
			Currency:  req.Currency,
			Reason:    req.Reason,
		})
	})
	g.observe("refund", providerID, start, err)
	if err != nil {
		return g.fail("refund", providerID, err)
	}

	refund := res.(*providers.RefundResponse)
	payload := clonePayload(refund.Payload)
	payload["refund_id"] = refund.RefundID

	g.logger.Info().
		Str("provider", providerID).
		Str("reference", req.Reference).
		Str("refund_id", refund.RefundID).
		Msg("refund created")

	return success(providerID, refund.Amount, money.NormalizeCurrency(refund.Currency), payload)
}

// CreateCustomer registers a customer with the card provider's registry. The
// returned id is durable: callers persist it against their own user record so
// repeat payments reuse one provider-side customer.
func (g *Gateway) CreateCustomer(ctx context.Context, req CustomerRequest) *Result {
	registry, providerID, ok := g.registry.Customers()
	if !ok {
		return g.fail("create_customer", "", domainErrors.ErrOperationNotSupported)
	}
	ctx, span := g.startSpan(ctx, "gateway.create_customer", providerID)
	defer span.End()

	start := time.Now()
	c, err := registry.CreateCustomer(ctx, providers.CustomerRequest{
		Email:    req.Email,
		Name:     req.Name,
		Metadata: req.Metadata,
	})
	g.observe("create_customer", providerID, start, err)
	if err != nil {
		return g.fail("create_customer", providerID, err)
	}

	return success(providerID, 0, "", map[string]any{
		"customer_id": c.ID,
		"email":       c.Email,
		"name":        c.Name,
	})
}

// GetCustomer retrieves a provider-side customer record by id.
func (g *Gateway) GetCustomer(ctx context.Context, id string) *Result {
	registry, providerID, ok := g.registry.Customers()
	if !ok {
		return g.fail("get_customer", "", domainErrors.ErrOperationNotSupported)
	}
	ctx, span := g.startSpan(ctx, "gateway.get_customer", providerID)
	defer span.End()

	c, err := registry.GetCustomer(ctx, id)
	if err != nil {
		return g.fail("get_customer", providerID, err)
	}

	return success(providerID, 0, "", map[string]any{
		"customer_id": c.ID,
		"email":       c.Email,
		"name":        c.Name,
	})
}

// CreateSetupIntent obtains a continuation token for saving a reusable
// payment method against a customer without charging anything.
func (g *Gateway) CreateSetupIntent(ctx context.Context, customerID string, metadata map[string]string) *Result {
	registry, providerID, ok := g.registry.Customers()
	if !ok {
		return g.fail("create_setup_intent", "", domainErrors.ErrOperationNotSupported)
	}
	ctx, span := g.startSpan(ctx, "gateway.create_setup_intent", providerID)
	defer span.End()

	si, err := registry.CreateSetupIntent(ctx, customerID, metadata)
	if err != nil {
		return g.fail("create_setup_intent", providerID, err)
	}

	return success(providerID, 0, "", map[string]any{
		"setup_intent_id": si.ID,
		"client_secret":   si.ClientSecret,
	})
}

// GetPaymentMethods lists the payment methods saved for a customer. A
// customer without a provider-side identity yields an empty list, not a
// failure.
func (g *Gateway) GetPaymentMethods(ctx context.Context, customerID string) *Result {
	registry, providerID, ok := g.registry.Customers()
	if !ok {
		return g.fail("get_payment_methods", "", domainErrors.ErrOperationNotSupported)
	}
	ctx, span := g.startSpan(ctx, "gateway.get_payment_methods", providerID)
	defer span.End()

	if customerID == "" {
		return success(providerID, 0, "", map[string]any{
			"payment_methods": []providers.PaymentMethod{},
		})
	}

	methods, err := registry.ListPaymentMethods(ctx, customerID)
	if err != nil {
		return g.fail("get_payment_methods", providerID, err)
	}

	return success(providerID, 0, "", map[string]any{
		"payment_methods": methods,
	})
}

// ListPaymentHistory lists a customer's payments with the selected provider.
// Only providers with a customer registry keep queryable history.
func (g *Gateway) ListPaymentHistory(ctx context.Context, customerID, provider string) *Result {
	registry, registryID, ok := g.registry.Customers()
	providerID := g.providerOrDefault(provider)
	if !ok || providerID != registryID {
		return g.fail("list_history", providerID, domainErrors.ErrOperationNotSupported)
	}
	ctx, span := g.startSpan(ctx, "gateway.list_payment_history", providerID)
	defer span.End()

	if customerID == "" {
		return success(providerID, 0, "", map[string]any{
			"payments": []providers.PaymentRecord{},
		})
	}

	records, err := registry.ListPayments(ctx, customerID)
	if err != nil {
		return g.fail("list_history", providerID, err)
	}

	return success(providerID, 0, "", map[string]any{
		"payments": records,
	})
}

func (g *Gateway) providerOrDefault(name string) string {
	if name == "" {
		return g.defaultProvider
	}
	return name
}

func (g *Gateway) startSpan(ctx context.Context, name, provider string) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("payment.provider", provider),
	))
}

func (g *Gateway) fail(operation, provider string, err error) *Result {
	res := failure(provider, err)

	g.logger.Warn().
		Str("operation", operation).
		Str("provider", provider).
		Str("kind", string(res.Kind)).
		Err(err).
		Msg("gateway operation failed")

	if g.metrics != nil {
		g.metrics.OperationsTotal.WithLabelValues(provider, operation, "failure").Inc()
		g.metrics.FailuresTotal.WithLabelValues(provider, string(res.Kind)).Inc()
	}
	return res
}

func (g *Gateway) observe(operation, provider string, start time.Time, err error) {
	if g.metrics == nil {
		return
	}
	g.metrics.OperationDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	if err == nil {
		g.metrics.OperationsTotal.WithLabelValues(provider, operation, "success").Inc()
	}
}

func clonePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	return out
}

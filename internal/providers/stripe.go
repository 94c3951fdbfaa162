package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/microlend/paygate/internal/domain/money"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// StripeProvider is the card-style provider family: intent-based lifecycle,
// integer minor-unit amounts, durable customer registry.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider builds a Stripe-backed provider. The API key is validated
// here so a misconfigured gateway fails at construction, not on first call.
func NewStripeProvider(secretKey string, httpClient *http.Client) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key: %w", domainErrors.ErrMissingCredentials)
	}

	api := &client.API{}
	if httpClient != nil {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			HTTPClient: httpClient,
		})
		api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	} else {
		api.Init(secretKey, nil)
	}

	return &StripeProvider{api: api}, nil
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) Descriptor() Descriptor {
	return Descriptor{
		Name:        "Stripe",
		Description: "Credit and debit cards, wallets and bank debits",
		Currencies:  []string{"usd", "eur", "gbp", "cad", "aud"},
		Fees:        FeeFormula(2.9, 0.30),
		Icon:        "credit-card",
		FeePercent:  2.9,
		FeeFixed:    0.30,
	}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(money.MinorUnits(req.Amount)),
		Currency: stripe.String(money.NormalizeCurrency(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapStripeErr("create payment intent", err)
	}

	return &IntentResponse{
		Reference: pi.ID,
		Payload: map[string]any{
			"client_secret": pi.ClientSecret,
			"status":        string(pi.Status),
		},
	}, nil
}

func (p *StripeProvider) Confirm(ctx context.Context, reference string) (*ConfirmResponse, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(reference, params)
	if err != nil {
		return nil, wrapStripeErr("retrieve payment intent", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("payment intent %s has status %q: %w",
			reference, pi.Status, domainErrors.ErrProviderRejected)
	}

	return &ConfirmResponse{
		Amount:   money.MajorUnits(pi.Amount),
		Currency: money.NormalizeCurrency(string(pi.Currency)),
		Payload: map[string]any{
			"intent_id": pi.ID,
			"status":    string(pi.Status),
		},
	}, nil
}

func (p *StripeProvider) Refund(ctx context.Context, req RefundRequest) (*RefundResponse, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.Reference),
	}
	params.Context = ctx
	// A full refund omits the amount so the provider computes it. Sending 0 is
	// not equivalent, so the field is only set when the caller gave an amount.
	if req.Amount != nil {
		params.Amount = stripe.Int64(money.MinorUnits(*req.Amount))
	}
	if req.Reason != "" {
		params.AddMetadata("reason", req.Reason)
	}

	r, err := p.api.Refunds.New(params)
	if err != nil {
		return nil, wrapStripeErr("create refund", err)
	}

	return &RefundResponse{
		RefundID: r.ID,
		Amount:   money.MajorUnits(r.Amount),
		Currency: money.NormalizeCurrency(string(r.Currency)),
		Payload: map[string]any{
			"status": string(r.Status),
		},
	}, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerResponse, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
		Name:  stripe.String(req.Name),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	c, err := p.api.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrCustomerCreationFailed, err)
	}

	return &CustomerResponse{ID: c.ID, Email: c.Email, Name: c.Name}, nil
}

func (p *StripeProvider) GetCustomer(ctx context.Context, id string) (*CustomerResponse, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := p.api.Customers.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", id, domainErrors.ErrCustomerNotFound)
	}

	return &CustomerResponse{ID: c.ID, Email: c.Email, Name: c.Name}, nil
}

func (p *StripeProvider) CreateSetupIntent(ctx context.Context, customerID string, metadata map[string]string) (*SetupIntentResponse, error) {
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	si, err := p.api.SetupIntents.New(params)
	if err != nil {
		return nil, wrapStripeErr("create setup intent", err)
	}

	return &SetupIntentResponse{ID: si.ID, ClientSecret: si.ClientSecret}, nil
}

func (p *StripeProvider) ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	methods := []PaymentMethod{}
	iter := p.api.PaymentMethods.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		m := PaymentMethod{ID: pm.ID}
		if pm.Card != nil {
			m.Brand = string(pm.Card.Brand)
			m.Last4 = pm.Card.Last4
			m.ExpMonth = int64(pm.Card.ExpMonth)
			m.ExpYear = int64(pm.Card.ExpYear)
		}
		methods = append(methods, m)
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeErr("list payment methods", err)
	}

	return methods, nil
}

func (p *StripeProvider) ListPayments(ctx context.Context, customerID string) ([]PaymentRecord, error) {
	params := &stripe.PaymentIntentListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	records := []PaymentRecord{}
	iter := p.api.PaymentIntents.List(params)
	for iter.Next() {
		pi := iter.PaymentIntent()
		records = append(records, PaymentRecord{
			Reference: pi.ID,
			Amount:    money.MajorUnits(pi.Amount),
			Currency:  money.NormalizeCurrency(string(pi.Currency)),
			Status:    string(pi.Status),
			CreatedAt: pi.Created,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeErr("list payment intents", err)
	}

	return records, nil
}

// wrapStripeErr classifies SDK failures: a structured *stripe.Error means the
// provider answered and rejected us, anything else never reached the provider.
func wrapStripeErr(op string, err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		return fmt.Errorf("stripe %s: %s: %w", op, sErr.Msg, domainErrors.ErrProviderRejected)
	}
	return domainErrors.NewTransportError("stripe "+op, err)
}

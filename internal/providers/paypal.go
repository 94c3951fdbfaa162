package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/microlend/paygate/internal/domain/money"
	"github.com/plutov/paypal/v4"
)

// PayPalProvider is the order-style provider family: order/capture lifecycle,
// decimal-string amounts, user approval via a redirect URL.
type PayPalProvider struct {
	client     *paypal.Client
	successURL string
	cancelURL  string
}

// NewPayPalProvider builds a PayPal-backed provider against the sandbox or
// live API depending on environment. Credentials are validated at construction.
func NewPayPalProvider(clientID, secret, environment, frontendBaseURL string, httpClient *http.Client) (*PayPalProvider, error) {
	if clientID == "" || secret == "" {
		return nil, fmt.Errorf("paypal client id/secret: %w", domainErrors.ErrMissingCredentials)
	}

	base := paypal.APIBaseSandBox
	if environment == "live" {
		base = paypal.APIBaseLive
	}

	c, err := paypal.NewClient(clientID, secret, base)
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}
	if httpClient != nil {
		c.Client = httpClient
	}

	frontend := strings.TrimRight(frontendBaseURL, "/")
	return &PayPalProvider{
		client:     c,
		successURL: frontend + "/payments/paypal/success",
		cancelURL:  frontend + "/payments/paypal/cancel",
	}, nil
}

func (p *PayPalProvider) Name() string { return "paypal" }

func (p *PayPalProvider) Descriptor() Descriptor {
	return Descriptor{
		Name:        "PayPal",
		Description: "PayPal balance and linked funding sources",
		Currencies:  []string{"usd", "eur", "gbp"},
		Fees:        FeeFormula(3.49, 0.49),
		Icon:        "paypal",
		FeePercent:  3.49,
		FeeFixed:    0.49,
	}
}

func (p *PayPalProvider) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error) {
	reference := req.Metadata["reference"]
	if reference == "" {
		reference = req.Metadata["loanId"]
	}
	description := req.Metadata["description"]
	if description == "" {
		description = "Microloan funding"
	}

	units := []paypal.PurchaseUnitRequest{{
		ReferenceID: reference,
		Description: description,
		Amount: &paypal.PurchaseUnitAmount{
			Currency: strings.ToUpper(req.Currency),
			Value:    money.DecimalString(req.Amount),
		},
	}}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: p.successURL,
		CancelURL: p.cancelURL,
	}

	order, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		return nil, wrapPayPalErr("create order", err)
	}

	approvalURL := approvalLink(order.Links)
	if approvalURL == "" {
		return nil, fmt.Errorf("order %s: %w", order.ID, domainErrors.ErrApprovalLinkMissing)
	}

	return &IntentResponse{
		Reference: order.ID,
		Payload: map[string]any{
			"approval_url": approvalURL,
			"status":       order.Status,
		},
	}, nil
}

func (p *PayPalProvider) Confirm(ctx context.Context, reference string) (*ConfirmResponse, error) {
	capture, err := p.client.CaptureOrder(ctx, reference, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, wrapPayPalErr("capture order", err)
	}

	if capture.Status != "COMPLETED" {
		return nil, fmt.Errorf("order %s has status %q: %w",
			reference, capture.Status, domainErrors.ErrProviderRejected)
	}

	var amount float64
	var currency string
	if len(capture.PurchaseUnits) > 0 && capture.PurchaseUnits[0].Payments != nil {
		captures := capture.PurchaseUnits[0].Payments.Captures
		if len(captures) > 0 && captures[0].Amount != nil {
			amount, err = money.ParseDecimalString(captures[0].Amount.Value)
			if err != nil {
				return nil, wrapPayPalErr("parse capture amount", err)
			}
			currency = money.NormalizeCurrency(captures[0].Amount.Currency)
		}
	}

	return &ConfirmResponse{
		Amount:   amount,
		Currency: currency,
		Payload: map[string]any{
			"order_id": capture.ID,
			"status":   capture.Status,
		},
	}, nil
}

func (p *PayPalProvider) Refund(ctx context.Context, req RefundRequest) (*RefundResponse, error) {
	// The capture API requires an explicit amount, there is no
	// "let the provider compute it" shortcut on this path.
	if req.Amount == nil {
		return nil, domainErrors.ErrRefundAmountRequired
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	refund, err := p.client.RefundCapture(ctx, req.Reference, paypal.RefundCaptureRequest{
		Amount: &paypal.Money{
			Currency: currency,
			Value:    money.DecimalString(*req.Amount),
		},
		NoteToPayer: req.Reason,
	})
	if err != nil {
		return nil, wrapPayPalErr("refund capture", err)
	}

	return &RefundResponse{
		RefundID: refund.ID,
		Amount:   *req.Amount,
		Currency: money.NormalizeCurrency(currency),
		Payload: map[string]any{
			"status": refund.Status,
		},
	}, nil
}

// approvalLink picks the user-facing approval URL out of the order's
// hypermedia links by relation name.
func approvalLink(links []paypal.Link) string {
	for _, l := range links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

// wrapPayPalErr classifies client failures: a structured *paypal.ErrorResponse
// means the provider answered and rejected us, anything else never reached it.
func wrapPayPalErr(op string, err error) error {
	var pErr *paypal.ErrorResponse
	if errors.As(err, &pErr) {
		return fmt.Errorf("paypal %s: %s: %w", op, pErr.Message, domainErrors.ErrProviderRejected)
	}
	return domainErrors.NewTransportError("paypal "+op, err)
}

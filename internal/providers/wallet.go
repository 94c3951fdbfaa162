package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WalletProvider is the in-house settlement family: no external round trip,
// references are synthesized locally and every operation completes
// immediately. It stands in for a provider lacking full integration, so
// callers must not treat its success as an external guarantee.
type WalletProvider struct {
	now func() time.Time
}

func NewWalletProvider() *WalletProvider {
	return &WalletProvider{now: time.Now}
}

func (p *WalletProvider) Name() string { return "wallet" }

func (p *WalletProvider) Descriptor() Descriptor {
	return Descriptor{
		Name:        "Platform Wallet",
		Description: "Instant settlement against the platform wallet balance",
		Currencies:  []string{"usd"},
		Fees:        FeeFormula(0, 0),
		Icon:        "wallet",
		FeePercent:  0,
		FeeFixed:    0,
	}
}

func (p *WalletProvider) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error) {
	return &IntentResponse{
		Reference: p.reference("txn"),
		Payload: map[string]any{
			"status": "created",
		},
	}, nil
}

func (p *WalletProvider) Confirm(ctx context.Context, reference string) (*ConfirmResponse, error) {
	return &ConfirmResponse{
		Amount:   0,
		Currency: "",
		Payload: map[string]any{
			"reference": reference,
			"status":    "succeeded",
		},
	}, nil
}

func (p *WalletProvider) Refund(ctx context.Context, req RefundRequest) (*RefundResponse, error) {
	var amount float64
	if req.Amount != nil {
		amount = *req.Amount
	}
	return &RefundResponse{
		RefundID: p.reference("refund"),
		Amount:   amount,
		Currency: req.Currency,
		Payload: map[string]any{
			"status": "succeeded",
		},
	}, nil
}

func (p *WalletProvider) reference(kind string) string {
	return fmt.Sprintf("wallet_%s_%d_%s", kind, p.now().UnixMilli(), uuid.NewString()[:8])
}

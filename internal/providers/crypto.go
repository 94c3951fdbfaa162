package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
)

const defaultCryptoSymbol = "USDC"

// CryptoProvider is the address-style ledger family: intent creation hands out
// a static deposit address for the requested symbol, no network call is made.
//
// Confirm is a pass-through stub: on-chain observation is out of scope, so a
// confirmed crypto payment is assumed settled. Callers must treat ledger
// payments as externally verified before relying on this path in production.
type CryptoProvider struct {
	addresses map[string]string
}

// NewCryptoProvider builds the ledger provider. Overrides replace or extend
// the built-in per-symbol deposit addresses.
func NewCryptoProvider(overrides map[string]string) *CryptoProvider {
	addresses := map[string]string{
		"BTC":  "bc1qm3usloanpool7xw508d6qejxtdg4y5r3zarvary0c5xw7k",
		"ETH":  "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		"USDC": "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
	}
	for symbol, addr := range overrides {
		addresses[strings.ToUpper(symbol)] = addr
	}
	return &CryptoProvider{addresses: addresses}
}

func (p *CryptoProvider) Name() string { return "crypto" }

func (p *CryptoProvider) Descriptor() Descriptor {
	return Descriptor{
		Name:        "Crypto",
		Description: "On-chain settlement to a platform deposit address",
		Currencies:  []string{"btc", "eth", "usdc"},
		Fees:        FeeFormula(1, 0),
		Icon:        "bitcoin",
		FeePercent:  1,
		FeeFixed:    0,
	}
}

func (p *CryptoProvider) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Currency))
	address, ok := p.addresses[symbol]
	if !ok {
		// Unknown symbols settle to the stable-coin address instead of failing.
		symbol = defaultCryptoSymbol
		address = p.addresses[symbol]
	}

	return &IntentResponse{
		Reference: address,
		Payload: map[string]any{
			"address":     address,
			"symbol":      symbol,
			"qr_code_url": qrCodeURL(address),
		},
	}, nil
}

func (p *CryptoProvider) Confirm(ctx context.Context, reference string) (*ConfirmResponse, error) {
	return &ConfirmResponse{
		Amount:   0,
		Currency: "",
		Payload: map[string]any{
			"address": reference,
			"status":  "assumed_confirmed",
		},
	}, nil
}

func (p *CryptoProvider) Refund(ctx context.Context, req RefundRequest) (*RefundResponse, error) {
	return nil, fmt.Errorf("on-chain refunds are handled manually: %w",
		domainErrors.ErrOperationNotSupported)
}

func qrCodeURL(address string) string {
	return "https://api.qrserver.com/v1/create-qr-code/?size=220x220&data=" + url.QueryEscape(address)
}

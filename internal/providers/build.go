package providers

import (
	"fmt"
	"net/http"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/microlend/paygate/internal/infrastructure/config"
)

// FromConfig assembles a registry with one provider per enabled family.
// Construction fails fast on missing credentials; nothing is deferred to the
// first provider call.
func FromConfig(cfg *config.Config) (*Registry, error) {
	httpClient := &http.Client{Timeout: cfg.Gateway.CallTimeout}
	registry := NewRegistry()

	for _, name := range cfg.Gateway.EnabledProviders {
		switch name {
		case "stripe":
			p, err := NewStripeProvider(cfg.Gateway.Stripe.SecretKey, httpClient)
			if err != nil {
				return nil, fmt.Errorf("build stripe provider: %w", err)
			}
			registry.Register(p)
		case "paypal":
			p, err := NewPayPalProvider(
				cfg.Gateway.PayPal.ClientID,
				cfg.Gateway.PayPal.Secret,
				cfg.Gateway.PayPal.Environment,
				cfg.Gateway.FrontendBaseURL,
				httpClient,
			)
			if err != nil {
				return nil, fmt.Errorf("build paypal provider: %w", err)
			}
			registry.Register(p)
		case "crypto":
			registry.Register(NewCryptoProvider(cfg.Gateway.Crypto.Addresses))
		case "wallet":
			registry.Register(NewWalletProvider())
		default:
			return nil, fmt.Errorf("provider %q: %w", name, domainErrors.ErrUnsupportedProvider)
		}
	}

	return registry, nil
}

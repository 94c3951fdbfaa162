package gateway

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/microlend/paygate/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, providersList ...providers.Provider) (*Gateway, *providers.Registry) {
	t.Helper()
	registry := providers.NewRegistry(providersList...)
	return New(registry, WithDefaultProvider("card")), registry
}

func TestCreatePaymentIntent_Success(t *testing.T) {
	card := providers.NewMockProvider("card")
	g, _ := newTestGateway(t, card)

	res := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:   49.99,
		Currency: "USD",
		Metadata: map[string]string{"loanId": "L1"},
		Provider: "card",
	})

	require.True(t, res.Success)
	assert.Equal(t, 49.99, res.Amount)
	assert.Equal(t, "usd", res.Currency, "currency must be lower-cased on output")
	assert.Equal(t, "card", res.Provider)
	assert.NotEmpty(t, res.Payload["reference"])

	reqs := card.IntentRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "L1", reqs[0].Metadata["loanId"], "metadata passes through unmodified")
}

func TestCreatePaymentIntent_DefaultProvider(t *testing.T) {
	card := providers.NewMockProvider("card")
	g, _ := newTestGateway(t, card)

	res := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:   10,
		Currency: "usd",
	})

	require.True(t, res.Success)
	assert.Equal(t, "card", res.Provider)
}

func TestCreatePaymentIntent_InvalidAmount(t *testing.T) {
	card := providers.NewMockProvider("card")
	g, _ := newTestGateway(t, card)

	for _, amount := range []float64{0, -1} {
		res := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
			Amount:   amount,
			Currency: "usd",
			Provider: "card",
		})

		require.False(t, res.Success)
		assert.Equal(t, KindValidation, res.Kind)
	}
	assert.Empty(t, card.IntentRequests(), "validation failures must not reach the provider")
}

func TestCreatePaymentIntent_UnknownProvider(t *testing.T) {
	card := providers.NewMockProvider("card")
	g, _ := newTestGateway(t, card)

	res := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:   10,
		Currency: "usd",
		Provider: "doesnotexist",
	})

	require.False(t, res.Success)
	assert.Equal(t, KindValidation, res.Kind)
	assert.Contains(t, res.Error, "doesnotexist")
	assert.Empty(t, card.IntentRequests(), "unknown provider must not trigger any call")
}

func TestCreatePaymentIntent_ProviderRejection(t *testing.T) {
	card := providers.NewMockProvider("card",
		providers.WithIntentError(domainErrors.ErrProviderRejected))
	g, _ := newTestGateway(t, card)

	res := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:   10,
		Currency: "usd",
		Provider: "card",
	})

	require.False(t, res.Success)
	assert.Equal(t, KindProvider, res.Kind)
}

func TestCreatePaymentIntent_TransportFailure(t *testing.T) {
	card := providers.NewMockProvider("card",
		providers.WithIntentError(domainErrors.NewTransportError("card create intent", errors.New("connection refused"))))
	g, _ := newTestGateway(t, card)

	res := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:   10,
		Currency: "usd",
		Provider: "card",
	})

	require.False(t, res.Success)
	assert.Equal(t, KindTransport, res.Kind)
}

func TestConfirmPayment_Success(t *testing.T) {
	card := providers.NewMockProvider("card",
		providers.WithConfirmOutcome(49.99, "USD"))
	g, _ := newTestGateway(t, card)

	res := g.ConfirmPayment(context.Background(), "card_txn_abc", "card")

	require.True(t, res.Success)
	assert.Equal(t, 49.99, res.Amount)
	assert.Equal(t, "usd", res.Currency)
}

func TestConfirmPayment_NotSucceeded(t *testing.T) {
	card := providers.NewMockProvider("card",
		providers.WithConfirmError(domainErrors.ErrProviderRejected))
	g, _ := newTestGateway(t, card)

	res := g.ConfirmPayment(context.Background(), "card_txn_abc", "card")

	require.False(t, res.Success)
	assert.Equal(t, KindProvider, res.Kind)
}

func TestCreateRefund_FullVsPartial(t *testing.T) {
	card := providers.NewMockProvider("card")
	g, _ := newTestGateway(t, card)

	full := g.CreateRefund(context.Background(), RefundRequest{
		Reference: "card_txn_abc",
		Reason:    "loan cancelled",
		Provider:  "card",
	})
	require.True(t, full.Success)

	amount := 0.01
	partial := g.CreateRefund(context.Background(), RefundRequest{
		Reference: "card_txn_abc",
		Amount:    &amount,
		Reason:    "partial adjustment",
		Provider:  "card",
	})
	require.True(t, partial.Success)

	// The two outbound requests must be observably different: the full refund
	// omits the amount entirely, the partial one carries it.
	reqs := card.RefundRequests()
	require.Len(t, reqs, 2)
	assert.Nil(t, reqs[0].Amount)
	require.NotNil(t, reqs[1].Amount)
	assert.Equal(t, 0.01, *reqs[1].Amount)
}

func TestCreateRefund_InvalidAmount(t *testing.T) {
	card := providers.NewMockProvider("card")
	g, _ := newTestGateway(t, card)

	zero := 0.0
	res := g.CreateRefund(context.Background(), RefundRequest{
		Reference: "card_txn_abc",
		Amount:    &zero,
		Provider:  "card",
	})

	require.False(t, res.Success)
	assert.Equal(t, KindValidation, res.Kind)
	assert.Empty(t, card.RefundRequests())
}

func TestCreateRefund_AmountRequired(t *testing.T) {
	order := providers.NewMockProvider("order",
		providers.WithRefundError(domainErrors.ErrRefundAmountRequired))
	g, _ := newTestGateway(t, order)

	res := g.CreateRefund(context.Background(), RefundRequest{
		Reference: "order_abc",
		Provider:  "order",
	})

	require.False(t, res.Success)
	assert.Equal(t, KindValidation, res.Kind)
}

func TestListProviders_Idempotent(t *testing.T) {
	g, _ := newTestGateway(t,
		providers.NewMockProvider("card"),
		providers.NewCryptoProvider(nil),
		providers.NewWalletProvider(),
	)

	first := g.ListProviders()
	second := g.ListProviders()

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
	assert.Contains(t, first, "crypto")
	assert.Contains(t, first, "wallet")
}

func TestProviderFees(t *testing.T) {
	g, _ := newTestGateway(t, providers.NewMockProvider("card"))

	fees, err := g.ProviderFees(100, "card", "usd")
	require.NoError(t, err)

	// Mock schedule is 1% + $0.10.
	assert.Equal(t, 100.0, fees.Amount)
	assert.Equal(t, 1.0, fees.Percentage)
	assert.Equal(t, 0.10, fees.Fixed)
	assert.Equal(t, 101.10, fees.Total)

	again, err := g.ProviderFees(100, "card", "usd")
	require.NoError(t, err)
	assert.Equal(t, fees, again, "fee calculation must be pure")
}

func TestProviderFees_Errors(t *testing.T) {
	g, _ := newTestGateway(t, providers.NewMockProvider("card"))

	_, err := g.ProviderFees(0, "card", "usd")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidAmount)

	_, err = g.ProviderFees(10, "doesnotexist", "usd")
	assert.ErrorIs(t, err, domainErrors.ErrUnsupportedProvider)
}

func TestCryptoIntent_UnknownSymbolFallsBack(t *testing.T) {
	g, _ := newTestGateway(t, providers.NewCryptoProvider(nil))

	res := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:   1,
		Currency: "xyz",
		Provider: "crypto",
	})

	require.True(t, res.Success)
	assert.Equal(t, "USDC", res.Payload["symbol"], "unknown symbols settle to the stable coin")
	assert.NotEmpty(t, res.Payload["address"])
	assert.Contains(t, res.Payload["qr_code_url"], "api.qrserver.com")
}

func TestWalletIntent_CompletesImmediately(t *testing.T) {
	g, _ := newTestGateway(t, providers.NewWalletProvider())

	res := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:   25,
		Currency: "USD",
		Provider: "wallet",
	})

	require.True(t, res.Success)
	assert.Equal(t, 25.0, res.Amount)
	assert.Equal(t, "usd", res.Currency)
	ref, _ := res.Payload["reference"].(string)
	assert.Contains(t, ref, "wallet_txn_")

	confirm := g.ConfirmPayment(context.Background(), ref, "wallet")
	require.True(t, confirm.Success)
}

func TestCustomerOperations(t *testing.T) {
	card := providers.NewMockProvider("card")
	g, _ := newTestGateway(t, card, providers.NewWalletProvider())

	created := g.CreateCustomer(context.Background(), CustomerRequest{
		Email: "borrower@example.com",
		Name:  "Test Borrower",
	})
	require.True(t, created.Success)
	customerID, _ := created.Payload["customer_id"].(string)
	require.NotEmpty(t, customerID)

	fetched := g.GetCustomer(context.Background(), customerID)
	require.True(t, fetched.Success)
	assert.Equal(t, "borrower@example.com", fetched.Payload["email"])

	setup := g.CreateSetupIntent(context.Background(), customerID, nil)
	require.True(t, setup.Success)
	assert.NotEmpty(t, setup.Payload["client_secret"])
}

func TestCustomerOperations_NoRegistry(t *testing.T) {
	// Only providers without a customer registry are registered.
	g, _ := newTestGateway(t, providers.NewWalletProvider(), providers.NewCryptoProvider(nil))

	res := g.CreateCustomer(context.Background(), CustomerRequest{Email: "a@b.c"})
	require.False(t, res.Success)
	assert.Equal(t, KindProvider, res.Kind)
}

func TestGetPaymentMethods_EmptyCustomer(t *testing.T) {
	card := providers.NewMockProvider("card")
	g, _ := newTestGateway(t, card)

	// No provider-side identity yet: empty list, not a failure.
	res := g.GetPaymentMethods(context.Background(), "")
	require.True(t, res.Success)
	methods, ok := res.Payload["payment_methods"].([]providers.PaymentMethod)
	require.True(t, ok)
	assert.Empty(t, methods)
}

func TestGetPaymentMethods_Saved(t *testing.T) {
	card := providers.NewMockProvider("card")
	card.AddPaymentMethod("cus_1", providers.PaymentMethod{
		ID: "pm_1", Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030,
	})
	g, _ := newTestGateway(t, card)

	res := g.GetPaymentMethods(context.Background(), "cus_1")
	require.True(t, res.Success)
	methods := res.Payload["payment_methods"].([]providers.PaymentMethod)
	require.Len(t, methods, 1)
	assert.Equal(t, "4242", methods[0].Last4)
}

func TestListPaymentHistory(t *testing.T) {
	card := providers.NewMockProvider("card")
	card.AddPaymentRecord("cus_1", providers.PaymentRecord{
		Reference: "card_txn_1", Amount: 49.99, Currency: "usd", Status: "succeeded",
	})
	g, _ := newTestGateway(t, card, providers.NewWalletProvider())

	res := g.ListPaymentHistory(context.Background(), "cus_1", "card")
	require.True(t, res.Success)
	records := res.Payload["payments"].([]providers.PaymentRecord)
	require.Len(t, records, 1)
	assert.Equal(t, 49.99, records[0].Amount)

	unsupported := g.ListPaymentHistory(context.Background(), "cus_1", "wallet")
	require.False(t, unsupported.Success)
}

func TestEndToEnd_CardIntentAndConfirm(t *testing.T) {
	card := providers.NewMockProvider("card",
		providers.WithConfirmOutcome(49.99, "USD"))
	g, _ := newTestGateway(t, card)

	intent := g.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:   49.99,
		Currency: "usd",
		Metadata: map[string]string{"loanId": "L1"},
		Provider: "card",
	})
	require.True(t, intent.Success)
	assert.Equal(t, 49.99, intent.Amount)
	assert.Equal(t, "usd", intent.Currency)

	ref := intent.Payload["reference"].(string)
	confirm := g.ConfirmPayment(context.Background(), ref, "card")
	require.True(t, confirm.Success)
	assert.Equal(t, intent.Amount, confirm.Amount, "amount must survive the minor-unit round trip")
	assert.Equal(t, intent.Currency, confirm.Currency)
}

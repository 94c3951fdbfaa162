package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/microlend/paygate/internal/gateway"
	"github.com/microlend/paygate/internal/infrastructure/config"
	"github.com/microlend/paygate/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, providersList ...providers.Provider) http.Handler {
	t.Helper()
	registry := providers.NewRegistry(providersList...)
	g := gateway.New(registry, gateway.WithDefaultProvider("card"))
	return NewRouter(RouterDeps{
		Gateway:    g,
		Registry:   registry,
		CORSConfig: config.CORSConfig{AllowedOrigins: []string{"*"}},
	})
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) gateway.Result {
	t.Helper()
	var res gateway.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestCreateIntentEndpoint(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"))

	rec := postJSON(t, router, "/api/v1/payments/intent", CreateIntentRequest{
		Amount:   49.99,
		Currency: "usd",
		Metadata: map[string]string{"loanId": "L1"},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeResult(t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, "usd", res.Currency)
	assert.NotEmpty(t, res.Payload["reference"])
}

func TestCreateIntentEndpoint_ValidationError(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"))

	rec := postJSON(t, router, "/api/v1/payments/intent", map[string]any{
		"amount":   0,
		"currency": "usd",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateIntentEndpoint_InvalidJSON(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intent", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateIntentEndpoint_StatusByFailureKind(t *testing.T) {
	tests := []struct {
		name        string
		providerErr error
		wantStatus  int
	}{
		{"provider rejection", domainErrors.ErrProviderRejected, http.StatusUnprocessableEntity},
		{"transport failure", domainErrors.NewTransportError("card", assert.AnError), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t,
				providers.NewMockProvider("card", providers.WithIntentError(tt.providerErr)))

			rec := postJSON(t, router, "/api/v1/payments/intent", CreateIntentRequest{
				Amount:   10,
				Currency: "usd",
			})

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestConfirmEndpoint(t *testing.T) {
	router := newTestRouter(t,
		providers.NewMockProvider("card", providers.WithConfirmOutcome(49.99, "usd")))

	rec := postJSON(t, router, "/api/v1/payments/confirm", ConfirmRequest{
		Reference: "card_txn_abc",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 49.99, res.Amount)
}

func TestRefundEndpoint(t *testing.T) {
	card := providers.NewMockProvider("card")
	router := newTestRouter(t, card)

	amount := 5.0
	rec := postJSON(t, router, "/api/v1/payments/refund", RefundRequest{
		Reference: "card_txn_abc",
		Amount:    &amount,
		Reason:    "loan cancelled",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	reqs := card.RefundRequests()
	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].Amount)
	assert.Equal(t, 5.0, *reqs[0].Amount)
}

func TestListProvidersEndpoint(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"), providers.NewWalletProvider())

	rec := getJSON(t, router, "/api/v1/payments/providers")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Providers map[string]providers.Descriptor `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Providers, 2)
}

func TestGetFeesEndpoint(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"))

	rec := getJSON(t, router, "/api/v1/payments/fees?amount=100&provider=card&currency=usd")

	require.Equal(t, http.StatusOK, rec.Code)
	var fees providers.FeeBreakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fees))
	assert.Equal(t, 101.10, fees.Total)
}

func TestGetFeesEndpoint_BadInput(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"))

	assert.Equal(t, http.StatusBadRequest, getJSON(t, router, "/api/v1/payments/fees?amount=abc").Code)
	assert.Equal(t, http.StatusBadRequest, getJSON(t, router, "/api/v1/payments/fees?amount=0&provider=card").Code)
	assert.Equal(t, http.StatusBadRequest, getJSON(t, router, "/api/v1/payments/fees?amount=10&provider=nope").Code)
}

func TestCustomerEndpoints(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"))

	rec := postJSON(t, router, "/api/v1/customers", CreateCustomerRequest{
		Email: "borrower@example.com",
		Name:  "Test Borrower",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeResult(t, rec)
	customerID, _ := created.Payload["customer_id"].(string)
	require.NotEmpty(t, customerID)

	rec = getJSON(t, router, "/api/v1/customers/"+customerID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = getJSON(t, router, "/api/v1/customers/"+customerID+"/payment-methods")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCustomerEndpoint_BadEmail(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"))

	rec := postJSON(t, router, "/api/v1/customers", CreateCustomerRequest{Email: "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, providers.NewMockProvider("card"))

	assert.Equal(t, http.StatusOK, getJSON(t, router, "/health").Code)
	assert.Equal(t, http.StatusOK, getJSON(t, router, "/health/live").Code)
	assert.Equal(t, http.StatusOK, getJSON(t, router, "/health/ready").Code)
}

func TestReadinessEndpoint_EmptyRegistry(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, router, "/health/ready").Code)
}

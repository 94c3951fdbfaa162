package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/microlend/paygate/internal/gateway"
	"github.com/microlend/paygate/internal/providers"
	"github.com/go-chi/chi/v5"
)

// GatewayService is the slice of the gateway the HTTP layer depends on.
type GatewayService interface {
	ListProviders() map[string]providers.Descriptor
	ProviderFees(amount float64, provider, currency string) (providers.FeeBreakdown, error)
	CreatePaymentIntent(ctx context.Context, req gateway.CreateIntentRequest) *gateway.Result
	ConfirmPayment(ctx context.Context, reference, provider string) *gateway.Result
	CreateRefund(ctx context.Context, req gateway.RefundRequest) *gateway.Result
	CreateCustomer(ctx context.Context, req gateway.CustomerRequest) *gateway.Result
	GetCustomer(ctx context.Context, id string) *gateway.Result
	CreateSetupIntent(ctx context.Context, customerID string, metadata map[string]string) *gateway.Result
	GetPaymentMethods(ctx context.Context, customerID string) *gateway.Result
	ListPaymentHistory(ctx context.Context, customerID, provider string) *gateway.Result
}

// PaymentController handles payment-related HTTP requests.
type PaymentController struct {
	gateway GatewayService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(g GatewayService) *PaymentController {
	return &PaymentController{gateway: g}
}

// ListProviders handles GET /api/v1/payments/providers
func (h *PaymentController) ListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": h.gateway.ListProviders(),
	})
}

// GetFees handles GET /api/v1/payments/fees?amount=&provider=&currency=
func (h *PaymentController) GetFees(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid amount", Code: "invalid_amount"})
		return
	}

	fees, err := h.gateway.ProviderFees(amount, r.URL.Query().Get("provider"), r.URL.Query().Get("currency"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		code := "fee_calculation_failed"
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			status, code = http.StatusBadRequest, "invalid_amount"
		case errors.Is(err, domainErrors.ErrUnsupportedProvider):
			status, code = http.StatusBadRequest, "unsupported_provider"
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	writeJSON(w, http.StatusOK, fees)
}

// CreateIntent handles POST /api/v1/payments/intent
func (h *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error"})
		return
	}

	writeResult(w, h.gateway.CreatePaymentIntent(r.Context(), gateway.CreateIntentRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Metadata: req.Metadata,
		Provider: req.Provider,
	}))
}

// Confirm handles POST /api/v1/payments/confirm
func (h *PaymentController) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error"})
		return
	}

	writeResult(w, h.gateway.ConfirmPayment(r.Context(), req.Reference, req.Provider))
}

// Refund handles POST /api/v1/payments/refund
func (h *PaymentController) Refund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error"})
		return
	}

	writeResult(w, h.gateway.CreateRefund(r.Context(), gateway.RefundRequest{
		Reference: req.Reference,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reason:    req.Reason,
		Provider:  req.Provider,
	}))
}

// CreateCustomer handles POST /api/v1/customers
func (h *PaymentController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error"})
		return
	}

	writeResult(w, h.gateway.CreateCustomer(r.Context(), gateway.CustomerRequest{
		Email:    req.Email,
		Name:     req.Name,
		Metadata: req.Metadata,
	}))
}

// GetCustomer handles GET /api/v1/customers/{id}
func (h *PaymentController) GetCustomer(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.gateway.GetCustomer(r.Context(), chi.URLParam(r, "id")))
}

// CreateSetupIntent handles POST /api/v1/customers/{id}/setup-intent
func (h *PaymentController) CreateSetupIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Metadata map[string]string `json:"metadata,omitempty"`
	}
	// The body is optional on this endpoint.
	_ = decodeAndValidate(r, &req)

	writeResult(w, h.gateway.CreateSetupIntent(r.Context(), chi.URLParam(r, "id"), req.Metadata))
}

// GetPaymentMethods handles GET /api/v1/customers/{id}/payment-methods
func (h *PaymentController) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.gateway.GetPaymentMethods(r.Context(), chi.URLParam(r, "id")))
}

// ListPaymentHistory handles GET /api/v1/customers/{id}/payments?provider=
func (h *PaymentController) ListPaymentHistory(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.gateway.ListPaymentHistory(r.Context(),
		chi.URLParam(r, "id"), r.URL.Query().Get("provider")))
}

package controller

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (validation tags, optional fields).
// Controllers convert them to gateway requests before dispatching.

// CreateIntentRequest holds the input for opening a payment intent.
type CreateIntentRequest struct {
	Amount   float64           `json:"amount" validate:"required,gt=0"`
	Currency string            `json:"currency" validate:"required,min=3,max=5"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Provider string            `json:"provider,omitempty"`
}

// ConfirmRequest holds the input for confirming a payment intent.
type ConfirmRequest struct {
	Reference string `json:"reference" validate:"required"`
	Provider  string `json:"provider,omitempty"`
}

// RefundRequest holds the input for refunding a confirmed payment. A missing
// amount requests a full refund where the provider supports one.
type RefundRequest struct {
	Reference string   `json:"reference" validate:"required"`
	Amount    *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Currency  string   `json:"currency,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Provider  string   `json:"provider,omitempty"`
}

// CreateCustomerRequest holds the input for registering a provider-side customer.
type CreateCustomerRequest struct {
	Email    string            `json:"email" validate:"required,email"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a configurable in-memory provider used in tests. It records
// every request it receives so tests can assert on the exact outbound shape.
type MockProvider struct {
	name    string
	latency time.Duration

	intentErr  error
	confirmErr error
	refundErr  error

	confirmAmount   float64
	confirmCurrency string

	mu             sync.Mutex
	intentRequests []IntentRequest
	refundRequests []RefundRequest

	customers map[string]CustomerResponse
	methods   map[string][]PaymentMethod
	history   map[string][]PaymentRecord
}

type MockProviderOption func(*MockProvider)

func WithLatency(d time.Duration) MockProviderOption {
	return func(p *MockProvider) { p.latency = d }
}

func WithIntentError(err error) MockProviderOption {
	return func(p *MockProvider) { p.intentErr = err }
}

func WithConfirmError(err error) MockProviderOption {
	return func(p *MockProvider) { p.confirmErr = err }
}

func WithRefundError(err error) MockProviderOption {
	return func(p *MockProvider) { p.refundErr = err }
}

func WithConfirmOutcome(amount float64, currency string) MockProviderOption {
	return func(p *MockProvider) {
		p.confirmAmount = amount
		p.confirmCurrency = currency
	}
}

func NewMockProvider(name string, opts ...MockProviderOption) *MockProvider {
	p := &MockProvider{
		name:      name,
		customers: make(map[string]CustomerResponse),
		methods:   make(map[string][]PaymentMethod),
		history:   make(map[string][]PaymentRecord),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *MockProvider) Name() string { return p.name }

func (p *MockProvider) Descriptor() Descriptor {
	return Descriptor{
		Name:        p.name,
		Description: "test provider",
		Currencies:  []string{"usd"},
		Fees:        FeeFormula(1, 0.10),
		Icon:        "test",
		FeePercent:  1,
		FeeFixed:    0.10,
	}
}

func (p *MockProvider) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error) {
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.intentRequests = append(p.intentRequests, req)
	p.mu.Unlock()

	if p.intentErr != nil {
		return nil, p.intentErr
	}
	return &IntentResponse{
		Reference: fmt.Sprintf("%s_txn_%s", p.name, uuid.NewString()[:8]),
		Payload:   map[string]any{"status": "created"},
	}, nil
}

func (p *MockProvider) Confirm(ctx context.Context, reference string) (*ConfirmResponse, error) {
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}
	if p.confirmErr != nil {
		return nil, p.confirmErr
	}
	return &ConfirmResponse{
		Amount:   p.confirmAmount,
		Currency: p.confirmCurrency,
		Payload:  map[string]any{"reference": reference, "status": "succeeded"},
	}, nil
}

func (p *MockProvider) Refund(ctx context.Context, req RefundRequest) (*RefundResponse, error) {
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.refundRequests = append(p.refundRequests, req)
	p.mu.Unlock()

	if p.refundErr != nil {
		return nil, p.refundErr
	}
	var amount float64
	if req.Amount != nil {
		amount = *req.Amount
	}
	return &RefundResponse{
		RefundID: fmt.Sprintf("%s_refund_%s", p.name, uuid.NewString()[:8]),
		Amount:   amount,
		Currency: req.Currency,
		Payload:  map[string]any{"status": "succeeded"},
	}, nil
}

// IntentRequests returns a copy of every intent request received so far.
func (p *MockProvider) IntentRequests() []IntentRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]IntentRequest(nil), p.intentRequests...)
}

// RefundRequests returns a copy of every refund request received so far.
func (p *MockProvider) RefundRequests() []RefundRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RefundRequest(nil), p.refundRequests...)
}

func (p *MockProvider) sleep(ctx context.Context) error {
	if p.latency == 0 {
		return nil
	}
	select {
	case <-time.After(p.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- CustomerRegistry ---

func (p *MockProvider) CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerResponse, error) {
	c := CustomerResponse{
		ID:    fmt.Sprintf("%s_cus_%s", p.name, uuid.NewString()[:8]),
		Email: req.Email,
		Name:  req.Name,
	}
	p.mu.Lock()
	p.customers[c.ID] = c
	p.mu.Unlock()
	return &c, nil
}

func (p *MockProvider) GetCustomer(ctx context.Context, id string) (*CustomerResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.customers[id]
	if !ok {
		return nil, fmt.Errorf("mock customer %s not found", id)
	}
	return &c, nil
}

func (p *MockProvider) CreateSetupIntent(ctx context.Context, customerID string, metadata map[string]string) (*SetupIntentResponse, error) {
	id := fmt.Sprintf("%s_seti_%s", p.name, uuid.NewString()[:8])
	return &SetupIntentResponse{ID: id, ClientSecret: id + "_secret"}, nil
}

func (p *MockProvider) ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PaymentMethod(nil), p.methods[customerID]...), nil
}

func (p *MockProvider) ListPayments(ctx context.Context, customerID string) ([]PaymentRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PaymentRecord(nil), p.history[customerID]...), nil
}

// AddPaymentMethod seeds a saved payment method for tests.
func (p *MockProvider) AddPaymentMethod(customerID string, m PaymentMethod) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.methods[customerID] = append(p.methods[customerID], m)
}

// AddPaymentRecord seeds a history entry for tests.
func (p *MockProvider) AddPaymentRecord(customerID string, r PaymentRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history[customerID] = append(p.history[customerID], r)
}

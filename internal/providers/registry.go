package providers

import (
	"fmt"
	"sort"
	"time"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/sony/gobreaker/v2"
)

// Registry maps provider ids to implementations. Each provider gets its own
// circuit breaker: a tripped breaker fails calls fast, it never retries them —
// the gateway stays strictly single-attempt per call.
type Registry struct {
	providers map[string]Provider
	breakers  map[string]*gobreaker.CircuitBreaker[any]
}

func NewRegistry(providersList ...Provider) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		breakers:  make(map[string]*gobreaker.CircuitBreaker[any]),
	}
	for _, p := range providersList {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
	r.breakers[p.Name()] = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
}

// Get returns the provider and its breaker for the given id.
func (r *Registry) Get(name string) (Provider, *gobreaker.CircuitBreaker[any], error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, nil, fmt.Errorf("provider %q: %w", name, domainErrors.ErrUnsupportedProvider)
	}
	return p, r.breakers[name], nil
}

// Has reports whether a provider id is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}

// Names returns the registered provider ids in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns the static descriptor of every registered provider.
func (r *Registry) Descriptors() map[string]Descriptor {
	out := make(map[string]Descriptor, len(r.providers))
	for name, p := range r.providers {
		out[name] = p.Descriptor()
	}
	return out
}

// Customers returns the first registered provider that keeps a durable
// customer registry, along with its id.
func (r *Registry) Customers() (CustomerRegistry, string, bool) {
	for _, name := range r.Names() {
		if reg, ok := r.providers[name].(CustomerRegistry); ok {
			return reg, name, true
		}
	}
	return nil, "", false
}

package controller

import (
	"time"

	"github.com/microlend/paygate/internal/infrastructure/config"
	"github.com/microlend/paygate/internal/infrastructure/observability"
	customMW "github.com/microlend/paygate/internal/middleware"
	"github.com/microlend/paygate/internal/providers"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Gateway           GatewayService
	Registry          *providers.Registry
	Metrics           *observability.Metrics
	CORSConfig        config.CORSConfig
	RequestsPerMinute int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	if deps.RequestsPerMinute > 0 {
		r.Use(customMW.RateLimit(deps.RequestsPerMinute))
	}
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}

	healthH := NewHealthController(deps.Registry)
	paymentH := NewPaymentController(deps.Gateway)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Payments
		r.Get("/payments/providers", paymentH.ListProviders)
		r.Get("/payments/fees", paymentH.GetFees)
		r.Post("/payments/intent", paymentH.CreateIntent)
		r.Post("/payments/confirm", paymentH.Confirm)
		r.Post("/payments/refund", paymentH.Refund)

		// Customers
		r.Post("/customers", paymentH.CreateCustomer)
		r.Get("/customers/{id}", paymentH.GetCustomer)
		r.Post("/customers/{id}/setup-intent", paymentH.CreateSetupIntent)
		r.Get("/customers/{id}/payment-methods", paymentH.GetPaymentMethods)
		r.Get("/customers/{id}/payments", paymentH.ListPaymentHistory)
	})

	return r
}

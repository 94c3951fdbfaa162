package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Tracing wraps each request in an otelhttp server span named after chi's
// matched route pattern so traces group by endpoint, not by raw path.
func Tracing() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The pattern is only known after chi routing has run, so the
			// instrumented handler is built per request.
			inner := http.HandlerFunc(func(w2 http.ResponseWriter, r2 *http.Request) {
				operation := r2.Method + " " + r2.URL.Path
				if rctx := chi.RouteContext(r2.Context()); rctx != nil && rctx.RoutePattern() != "" {
					operation = r2.Method + " " + rctx.RoutePattern()
				}
				otelhttp.NewHandler(next, operation).ServeHTTP(w2, r2)
			})
			inner.ServeHTTP(w, r)
		})
	}
}

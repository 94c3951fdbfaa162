package controller

import (
	"net/http"

	"github.com/microlend/paygate/internal/providers"
)

type HealthController struct {
	registry *providers.Registry
}

func NewHealthController(registry *providers.Registry) *HealthController {
	return &HealthController{registry: registry}
}

func (h *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness reports ready once at least one provider is registered. Provider
// construction validates credentials, so a populated registry means the
// gateway can take traffic.
func (h *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	if len(names) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
			"reason": "no payment providers registered",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"providers": names,
	})
}

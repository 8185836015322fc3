// Package health contiene el controller de health checks.
package health

import (
	"net/http"

	"github.com/dropDatabas3/efedauth/internal/http/helpers"
	svc "github.com/dropDatabas3/efedauth/internal/http/services/health"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Healthz es el liveness: responde mientras el proceso atienda requests.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := c.service.Check(ctx)
	if resp.Version != "" {
		w.Header().Set("X-Service-Version", resp.Version)
	}

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	log.Debug("health check completed", logger.String("status", resp.Status))

	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, status, resp)
}

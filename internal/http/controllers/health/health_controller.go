// Package health contiene el controller de /health.
package health

import (
	"net/http"

	"github.com/idryos/idryos-auth/internal/http/helpers"
	svc "github.com/idryos/idryos-auth/internal/http/services/health"
)

type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Health maneja GET /health. 503 si algún componente está caído.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	resp := c.service.Check(r.Context())
	status := http.StatusOK
	if resp.Status != svc.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-cache")
	helpers.WriteJSON(w, status, resp)
}

package http

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/megamart"
)

// HealthCheck verifica una dependencia (redis, postgres). nil = ok.
type HealthCheck func(ctx context.Context) error

// HealthHandler GET /health.
type HealthHandler struct {
	service string
	breaker func() megamart.BreakerState
	checks  map[string]HealthCheck
}

// NewHealthHandler construye el handler. breaker puede ser nil.
func NewHealthHandler(service string, breaker func() megamart.BreakerState, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{service: service, breaker: breaker, checks: checks}
}

// Health godoc
// @Summary      Estado del servicio y sus dependencias
// @Description  "degraded" si el circuito hacia MegaMart está abierto o falla alguna dependencia.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthDTO
// @Failure      503  {object}  dto.HealthDTO
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	out := dto.HealthDTO{Status: "ok", Service: h.service, Checks: map[string]string{}}
	if h.breaker != nil {
		st := h.breaker()
		out.Checks["megamart"] = st.String()
		if st == megamart.BreakerOpen {
			out.Status = "degraded"
		}
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			out.Checks[name] = "error: " + err.Error()
			out.Status = "degraded"
			continue
		}
		out.Checks[name] = "ok"
	}

	if out.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(out)
	}
	return c.JSON(out)
}

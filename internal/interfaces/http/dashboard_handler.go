package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/megamart-analytics/internal/application/analytics"
	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/application/refresh"
)

// DashboardHandler sirve las instantáneas del tablero de analítica.
type DashboardHandler struct {
	refresher *refresh.Refresher
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(r *refresh.Refresher) *DashboardHandler {
	return &DashboardHandler{refresher: r}
}

// GetClientes godoc
// @Summary      Analítica de clientes
// @Description  Segmentación, nuevos vs recurrentes, frecuencia y gasto por cliente.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CustomerAnalyticsDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/clientes [get]
func (h *DashboardHandler) GetClientes(c *fiber.Ctx) error {
	return h.serve(c, analytics.ViewClientes, "")
}

// GetInventario godoc
// @Summary      Analítica de inventario
// @Description  Rotación por categoría, sobrestock y productos bajo el mínimo.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryAnalyticsDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/inventario [get]
func (h *DashboardHandler) GetInventario(c *fiber.Ctx) error {
	return h.serve(c, analytics.ViewInventario, "")
}

// GetVentas godoc
// @Summary      Ventas en tiempo real
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SalesAnalyticsDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/ventas [get]
func (h *DashboardHandler) GetVentas(c *fiber.Ctx) error {
	return h.serve(c, analytics.ViewVentas, "")
}

// GetSucursales godoc
// @Summary      Comparativo de sedes
// @Description  Ventas por sede en la ventana del período y crecimiento frente a la ventana anterior.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        periodo  query  string  false  "daily | weekly | monthly (default monthly)"
// @Success      200  {object}  dto.BranchAnalyticsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/sucursales [get]
func (h *DashboardHandler) GetSucursales(c *fiber.Ctx) error {
	return h.serve(c, analytics.ViewSucursales, c.Query("periodo"))
}

// Refresh godoc
// @Summary      Fuerza el recálculo de una vista
// @Description  Llamadas simultáneas sobre la misma vista comparten un único cálculo.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        view     path   string  true   "clientes | inventario | sucursales | ventas"
// @Param        periodo  query  string  false  "Solo para sucursales"
// @Success      200  {object}  dto.RefreshResultDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/{view}/refresh [post]
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	v, err := analytics.ParseView(c.Params("view"), c.Query("periodo"))
	if err != nil {
		return writeError(c, err)
	}
	if _, err := h.refresher.Refresh(c.UserContext(), v); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RefreshResultDTO{
		View:        v.Key(),
		RefreshedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// serve responde con el JSON ya serializado de la instantánea.
func (h *DashboardHandler) serve(c *fiber.Ctx, name, period string) error {
	v, err := analytics.ParseView(name, period)
	if err != nil {
		return writeError(c, err)
	}
	snap, err := h.refresher.Get(c.UserContext(), v)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(snap.Payload)
}

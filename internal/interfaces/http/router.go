package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	apppos "github.com/jhoicas/megamart-analytics/internal/application/pos"
	"github.com/jhoicas/megamart-analytics/internal/application/refresh"
	"github.com/jhoicas/megamart-analytics/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Refresher   *refresh.Refresher
	POS         *apppos.UseCase
	Health      *HealthHandler
	Metrics     nethttp.Handler // nil = sin /metrics
	MetricsPath string
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Health != nil {
		app.Get("/health", deps.Health.Health)
	}
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(deps.Metrics))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Dashboard: lectura para admin y analista, recálculo forzado solo admin
	dashboard := api.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.Refresher)
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleAnalista)
	dashboard.Get("/clientes", readers, dashboardHandler.GetClientes)
	dashboard.Get("/inventario", readers, dashboardHandler.GetInventario)
	dashboard.Get("/sucursales", readers, dashboardHandler.GetSucursales)
	dashboard.Get("/ventas", readers, dashboardHandler.GetVentas)
	dashboard.Post("/:view/refresh", RequireRole(jwt.RoleAdmin), dashboardHandler.Refresh)

	// Caja
	pos := api.Group("/pos", RequireRole(jwt.RoleCajero, jwt.RoleAdmin))
	posHandler := NewPOSHandler(deps.POS)
	pos.Get("/startup", posHandler.Startup)
	pos.Post("/sessions", posHandler.CreateSession)
	pos.Get("/sessions/:id", posHandler.GetSession)
	pos.Post("/sessions/:id/start", posHandler.Begin)
	pos.Post("/sessions/:id/items", posHandler.AddProduct)
	pos.Post("/sessions/:id/promotions", posHandler.ApplyPromotion)
	pos.Post("/sessions/:id/checkout", posHandler.Checkout)
	pos.Post("/sessions/:id/payment", posHandler.Finalize)
	pos.Post("/sessions/:id/reset", posHandler.Reset)
	pos.Get("/sessions/:id/change", posHandler.PreviewChange)
	pos.Get("/sessions/:id/receipt.pdf", posHandler.ReceiptPDF)
	pos.Get("/sessions/:id/receipt.xml", posHandler.ReceiptXML)
	pos.Get("/receipts/:transactionID", posHandler.GetArchivedReceipt)
}

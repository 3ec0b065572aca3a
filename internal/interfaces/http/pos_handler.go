package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	apppos "github.com/jhoicas/megamart-analytics/internal/application/pos"
	"github.com/jhoicas/megamart-analytics/pkg/jwt"
)

// POSHandler expone el asistente de venta en caja.
type POSHandler struct {
	uc *apppos.UseCase
}

// NewPOSHandler construye el handler.
func NewPOSHandler(uc *apppos.UseCase) *POSHandler {
	return &POSHandler{uc: uc}
}

func actorFrom(c *fiber.Ctx) apppos.Actor {
	return apppos.Actor{UserID: GetUserID(c), Admin: GetRole(c) == jwt.RoleAdmin}
}

// Startup godoc
// @Summary      Catálogos del primer paso (clientes y sedes)
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StartupDataDTO
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/pos/startup [get]
func (h *POSHandler) Startup(c *fiber.Ctx) error {
	data, err := h.uc.StartupData(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(data)
}

// CreateSession godoc
// @Summary      Abre una sesión de caja en el paso 1
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.SessionDTO
// @Router       /api/pos/sessions [post]
func (h *POSHandler) CreateSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(h.uc.CreateSession(actorFrom(c)))
}

// GetSession godoc
// @Summary      Estado de la sesión
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de sesión"
// @Success      200  {object}  dto.SessionDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pos/sessions/{id} [get]
func (h *POSHandler) GetSession(c *fiber.Ctx) error {
	sess, err := h.uc.GetSession(c.Params("id"), actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sess)
}

// Begin godoc
// @Summary      Inicia la transacción (paso 1 → 2)
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de sesión"
// @Param        body  body  dto.BeginTransactionRequest  true  "Cliente y sede"
// @Success      200  {object}  dto.SessionDTO
// @Failure      409  {object}  dto.SessionErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.SessionErrorResponse
// @Router       /api/pos/sessions/{id}/start [post]
func (h *POSHandler) Begin(c *fiber.Ctx) error {
	var req dto.BeginTransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.respond(c, func(ctx context.Context, id string, a apppos.Actor) (*dto.SessionDTO, error) {
		return h.uc.Begin(ctx, id, a, req)
	})
}

// AddProduct godoc
// @Summary      Agrega un producto a la venta (paso 2)
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de sesión"
// @Param        body  body  dto.AddProductRequest  true  "Producto y cantidad"
// @Success      200  {object}  dto.SessionDTO
// @Failure      409  {object}  dto.SessionErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/pos/sessions/{id}/items [post]
func (h *POSHandler) AddProduct(c *fiber.Ctx) error {
	var req dto.AddProductRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.respond(c, func(ctx context.Context, id string, a apppos.Actor) (*dto.SessionDTO, error) {
		return h.uc.AddProduct(ctx, id, a, req)
	})
}

// ApplyPromotion godoc
// @Summary      Aplica un código de promoción (paso 2)
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de sesión"
// @Param        body  body  dto.ApplyPromotionRequest  true  "Código"
// @Success      200  {object}  dto.SessionDTO
// @Failure      409  {object}  dto.SessionErrorResponse
// @Router       /api/pos/sessions/{id}/promotions [post]
func (h *POSHandler) ApplyPromotion(c *fiber.Ctx) error {
	var req dto.ApplyPromotionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.respond(c, func(ctx context.Context, id string, a apppos.Actor) (*dto.SessionDTO, error) {
		return h.uc.ApplyPromotion(ctx, id, a, req)
	})
}

// Checkout godoc
// @Summary      Pasa al pago (paso 2 → 3)
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de sesión"
// @Success      200  {object}  dto.SessionDTO
// @Failure      409  {object}  dto.SessionErrorResponse
// @Router       /api/pos/sessions/{id}/checkout [post]
func (h *POSHandler) Checkout(c *fiber.Ctx) error {
	return h.respond(c, h.uc.ProceedToPayment)
}

// Finalize godoc
// @Summary      Registra el pago y cierra la venta (paso 3 → 4)
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de sesión"
// @Param        body  body  dto.FinalizeRequest  true  "Medio de pago y monto"
// @Success      200  {object}  dto.SessionDTO
// @Failure      409  {object}  dto.SessionErrorResponse
// @Failure      422  {object}  dto.SessionErrorResponse
// @Router       /api/pos/sessions/{id}/payment [post]
func (h *POSHandler) Finalize(c *fiber.Ctx) error {
	var req dto.FinalizeRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.respond(c, func(ctx context.Context, id string, a apppos.Actor) (*dto.SessionDTO, error) {
		return h.uc.Finalize(ctx, id, a, req)
	})
}

// Reset godoc
// @Summary      Descarta la venta y vuelve al paso 1
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de sesión"
// @Success      200  {object}  dto.SessionDTO
// @Router       /api/pos/sessions/{id}/reset [post]
func (h *POSHandler) Reset(c *fiber.Ctx) error {
	return h.respond(c, h.uc.Reset)
}

// PreviewChange godoc
// @Summary      Cambio a devolver para un monto pagado
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id           path   string  true  "ID de sesión"
// @Param        amount_paid  query  number  true  "Monto entregado por el cliente"
// @Success      200  {object}  dto.ChangePreviewDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/pos/sessions/{id}/change [get]
func (h *POSHandler) PreviewChange(c *fiber.Ctx) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.Query("amount_paid")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "amount_paid debe ser numérico",
		})
	}
	out, err := h.uc.PreviewChange(c.Params("id"), actorFrom(c), amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReceiptPDF godoc
// @Summary      Comprobante en PDF
// @Tags         pos
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de sesión"
// @Success      200  {file}    binary
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pos/sessions/{id}/receipt.pdf [get]
func (h *POSHandler) ReceiptPDF(c *fiber.Ctx) error {
	return h.receipt(c, apppos.ReceiptPDF)
}

// ReceiptXML godoc
// @Summary      Comprobante en XML canónico con huella SHA-256
// @Tags         pos
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID de sesión"
// @Success      200  {file}    binary
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pos/sessions/{id}/receipt.xml [get]
func (h *POSHandler) ReceiptXML(c *fiber.Ctx) error {
	return h.receipt(c, apppos.ReceiptXML)
}

// GetArchivedReceipt godoc
// @Summary      Comprobante archivado por ID de transacción
// @Description  Incluye si el código de verificación sigue correspondiendo a la transacción.
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        transactionID  path  string  true  "ID de transacción"
// @Success      200  {object}  dto.ReceiptDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pos/receipts/{transactionID} [get]
func (h *POSHandler) GetArchivedReceipt(c *fiber.Ctx) error {
	rc, err := h.uc.ArchivedReceipt(c.UserContext(), c.Params("transactionID"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rc)
}

func (h *POSHandler) receipt(c *fiber.Ctx, format string) error {
	body, contentType, err := h.uc.Receipt(c.UserContext(), c.Params("id"), actorFrom(c), format)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="comprobante-`+c.Params("id")+"."+format+`"`)
	return c.Send(body)
}

// respond ejecuta una acción del asistente. Si falla, el cuerpo lleva el error y el
// estado vigente de la sesión.
func (h *POSHandler) respond(c *fiber.Ctx, fn func(context.Context, string, apppos.Actor) (*dto.SessionDTO, error)) error {
	sess, err := fn(c.UserContext(), c.Params("id"), actorFrom(c))
	if err == nil {
		return c.JSON(sess)
	}
	if sess == nil {
		return writeError(c, err)
	}
	status, code := errorStatus(err)
	return c.Status(status).JSON(dto.SessionErrorResponse{Code: code, Message: err.Error(), Session: sess})
}

package http

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/pos"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/megamart"
)

var validate = validator.New()

func init() {
	// decimal.Decimal como número para que min=0, gt=0 y required no fallen con "Bad field type".
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate parsea el body JSON y aplica los tags de validación.
// Si falla ya escribió la respuesta: el handler debe retornar ese error tal cual.
func bindAndValidate(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_BODY", Message: "JSON inválido: " + err.Error(),
		})
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		msg := err.Error()
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg = "campo " + verrs[0].Field() + " no cumple " + verrs[0].Tag()
		}
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "VALIDATION_ERROR", Message: msg,
		})
	}
	return true, nil
}

// errorStatus traduce errores de dominio e infraestructura a código HTTP y código de error.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownView):
		return fiber.StatusNotFound, "UNKNOWN_VIEW"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, pos.ErrBusy):
		return fiber.StatusConflict, "BUSY"
	case errors.Is(err, pos.ErrInvalidStep):
		return fiber.StatusConflict, "INVALID_STEP"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, pos.ErrInsufficientPayment):
		return fiber.StatusUnprocessableEntity, "INSUFFICIENT_PAYMENT"
	case errors.Is(err, pos.ErrMissingField),
		errors.Is(err, pos.ErrInvalidQuantity),
		errors.Is(err, pos.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "BAD_REQUEST"
	}
	switch megamart.KindOf(err) {
	case megamart.KindTransport:
		return fiber.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"
	case megamart.KindStatus, megamart.KindDecode:
		return fiber.StatusBadGateway, "UPSTREAM_ERROR"
	}
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return fiber.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse según errorStatus.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

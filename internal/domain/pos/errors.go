package pos

import "errors"

var (
	ErrBusy                 = errors.New("ya hay una operación en curso para esta venta")
	ErrInvalidStep          = errors.New("operación no permitida en el paso actual")
	ErrMissingField         = errors.New("campo obligatorio vacío")
	ErrInvalidQuantity      = errors.New("la cantidad debe ser al menos 1")
	ErrInvalidPaymentMethod = errors.New("método de pago no admitido")
	ErrInsufficientPayment  = errors.New("el monto pagado es menor que el total")
)

package pos

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// BeginResult respuesta de "iniciar transacción".
type BeginResult struct {
	TransactionID string          `json:"transaction_id"`
	CreatedAt     entity.FlexTime `json:"created_at"`
}

// Gateway puerto hacia el servicio de ventas externo. El asistente emite como máximo
// una llamada por acción del usuario y no reintenta.
type Gateway interface {
	BeginTransaction(ctx context.Context, customerID, branchID string) (*BeginResult, error)
	// AddProduct devuelve el acuse de recibo en texto tal como lo envía el servidor.
	AddProduct(ctx context.Context, transactionID, productID string, quantity int) (string, error)
	// ApplyPromotion devuelve el acuse de recibo en texto tal como lo envía el servidor.
	ApplyPromotion(ctx context.Context, transactionID, promotionCode string) (string, error)
	Finalize(ctx context.Context, transactionID, paymentMethod string, amountPaid decimal.Decimal) (*entity.Transaction, error)
}

package megamart

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
	"github.com/jhoicas/megamart-analytics/internal/domain/pos"
)

var _ pos.Gateway = (*Client)(nil)

// Rutas del asistente de venta (no ASCII; se envían codificadas).
const (
	pathBegin     = "/api/ventas/iniciar-transacción"
	pathAddItem   = "/api/ventas/agregar-producto"
	pathPromotion = "/api/ventas/aplicar-promoción"
	pathFinalize  = "/api/ventas/finalizar"
)

type beginRequest struct {
	CustomerID string `json:"customer_id"`
	BranchID   string `json:"branch_id"`
}

type addProductRequest struct {
	TransactionID string `json:"transaction_id"`
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
}

type promotionRequest struct {
	TransactionID string `json:"transaction_id"`
	PromotionCode string `json:"promotion_code"`
}

type finalizeRequest struct {
	TransactionID string      `json:"transaction_id"`
	PaymentMethod string      `json:"payment_method"`
	AmountPaid    json.Number `json:"amount_paid"` // número JSON, no string
}

// BeginTransaction POST /api/ventas/iniciar-transacción.
func (c *Client) BeginTransaction(ctx context.Context, customerID, branchID string) (*pos.BeginResult, error) {
	const op = "ventas.iniciar-transaccion"
	raw, err := c.do(ctx, op, http.MethodPost, pathBegin, beginRequest{CustomerID: customerID, BranchID: branchID})
	if err != nil {
		return nil, err
	}
	var res pos.BeginResult
	if err := decode(op, raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AddProduct POST /api/ventas/agregar-producto. Devuelve el acuse tal cual.
func (c *Client) AddProduct(ctx context.Context, transactionID, productID string, quantity int) (string, error) {
	raw, err := c.do(ctx, "ventas.agregar-producto", http.MethodPost, pathAddItem, addProductRequest{
		TransactionID: transactionID,
		ProductID:     productID,
		Quantity:      quantity,
	})
	if err != nil {
		return "", err
	}
	return ackText(raw), nil
}

// ApplyPromotion POST /api/ventas/aplicar-promoción. Devuelve el acuse tal cual.
func (c *Client) ApplyPromotion(ctx context.Context, transactionID, promotionCode string) (string, error) {
	raw, err := c.do(ctx, "ventas.aplicar-promocion", http.MethodPost, pathPromotion, promotionRequest{
		TransactionID: transactionID,
		PromotionCode: promotionCode,
	})
	if err != nil {
		return "", err
	}
	return ackText(raw), nil
}

// Finalize POST /api/ventas/finalizar. Devuelve la transacción completada del servidor.
func (c *Client) Finalize(ctx context.Context, transactionID, paymentMethod string, amountPaid decimal.Decimal) (*entity.Transaction, error) {
	const op = "ventas.finalizar"
	raw, err := c.do(ctx, op, http.MethodPost, pathFinalize, finalizeRequest{
		TransactionID: transactionID,
		PaymentMethod: paymentMethod,
		AmountPaid:    json.Number(amountPaid.Round(2).String()),
	})
	if err != nil {
		return nil, err
	}
	var tx entity.Transaction
	if err := decode(op, raw, &tx); err != nil {
		return nil, err
	}
	tx.Items = nonNil(tx.Items)
	tx.Discounts = nonNil(tx.Discounts)
	return &tx, nil
}

// ackText acuse como texto. Un string JSON ("\"ok\"") se devuelve sin comillas.
func ackText(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal([]byte(text), &s); err == nil {
			return s
		}
	}
	return text
}

package pos

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// ackEnvelope acepta las tres formas de acuse JSON que devuelve el servidor:
// la transacción completa, una línea de producto o un descuento.
type ackEnvelope struct {
	TransactionID string             `json:"transaction_id"`
	Items         *[]entity.LineItem `json:"items"`
	Discounts     *[]entity.Discount `json:"discounts"`
	Subtotal      *decimal.Decimal   `json:"subtotal"`
	Total         *decimal.Decimal   `json:"total"`

	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	PromotionCode string          `json:"promotion_code"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
}

// mergeAck fusiona un acuse estructurado en la transacción local.
// Un acuse en texto plano no modifica las listas. Devuelve true si hubo cambios.
func mergeAck(tx *entity.Transaction, ack string) bool {
	raw := strings.TrimSpace(ack)
	if !strings.HasPrefix(raw, "{") {
		return false
	}
	var env ackEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return false
	}

	switch {
	case env.Items != nil || env.Discounts != nil:
		if env.Items != nil {
			tx.Items = append([]entity.LineItem{}, (*env.Items)...)
		}
		if env.Discounts != nil {
			tx.Discounts = append([]entity.Discount{}, (*env.Discounts)...)
		}
		recomputeTotals(tx)
		if env.Subtotal != nil {
			tx.Subtotal = *env.Subtotal
		}
		if env.Total != nil {
			tx.Total = *env.Total
		}
	case env.ProductID != "":
		item := entity.LineItem{
			ProductID: env.ProductID,
			Quantity:  env.Quantity,
			UnitPrice: env.UnitPrice,
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		tx.Items = append(tx.Items, item)
		recomputeTotals(tx)
	case env.PromotionCode != "":
		tx.Discounts = append(tx.Discounts, entity.Discount{
			PromotionCode: env.PromotionCode,
			Type:          env.Type,
			Amount:        env.Amount,
		})
		recomputeTotals(tx)
	default:
		return false
	}
	return true
}

// recomputeTotals subtotal = Σ líneas; total = subtotal − Σ descuentos (nunca negativo).
func recomputeTotals(tx *entity.Transaction) {
	sub := decimal.Zero
	for _, it := range tx.Items {
		sub = sub.Add(it.Subtotal)
	}
	tx.Subtotal = sub.Round(2)
	total := tx.Subtotal.Sub(tx.DiscountTotal())
	if total.IsNegative() {
		total = decimal.Zero
	}
	tx.Total = total.Round(2)
}

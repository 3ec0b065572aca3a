package entity

import "github.com/shopspring/decimal"

// Métodos de pago admitidos en caja.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// Transaction venta de punto de venta gestionada por el asistente de caja.
// La copia autoritativa vive en el servidor de MegaMart; ésta es la copia local de la sesión.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	CustomerID    string          `json:"customer_id"`
	BranchID      string          `json:"branch_id"`
	Items         []LineItem      `json:"items"`
	Discounts     []Discount      `json:"discounts"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Change        decimal.Decimal `json:"change"`
	CreatedAt     FlexTime        `json:"created_at"`
	CompletedAt   FlexTime        `json:"completed_at"`
}

// LineItem línea de producto de una transacción.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Discount descuento aplicado por un código de promoción.
type Discount struct {
	PromotionCode string          `json:"promotion_code"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
}

// EmptyTransaction devuelve la transacción con los valores por defecto de una venta nueva.
func EmptyTransaction() Transaction {
	return Transaction{
		Items:         []LineItem{},
		Discounts:     []Discount{},
		Subtotal:      decimal.Zero,
		Total:         decimal.Zero,
		PaymentMethod: PaymentCash,
		AmountPaid:    decimal.Zero,
		Change:        decimal.Zero,
	}
}

// DiscountTotal suma de los montos de descuento.
func (t Transaction) DiscountTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range t.Discounts {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// Clone copia profunda (listas incluidas).
func (t Transaction) Clone() Transaction {
	c := t
	c.Items = append(make([]LineItem, 0, len(t.Items)), t.Items...)
	c.Discounts = append(make([]Discount, 0, len(t.Discounts)), t.Discounts...)
	return c
}

// IsValidPaymentMethod indica si m es un método de pago admitido.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

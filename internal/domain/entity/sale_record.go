package entity

import "github.com/shopspring/decimal"

// SaleRecord transacción histórica tal como la expone GET /api/transacciones.
type SaleRecord struct {
	TransactionID string          `json:"transaction_id"`
	CustomerID    string          `json:"customer_id"`
	BranchID      string          `json:"branch_id"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     FlexTime        `json:"created_at"`
}

// ItemCount unidades vendidas en la transacción.
func (r SaleRecord) ItemCount() int {
	n := 0
	for _, it := range r.Items {
		n += it.Quantity
	}
	return n
}

// RealTimeSales métricas del día (GET /api/analytics/ventas/tiempo-real).
type RealTimeSales struct {
	TodayTotal               decimal.Decimal `json:"today_total"`
	TodayTransactions        int             `json:"today_transactions"`
	PreviousWeekTotal        decimal.Decimal `json:"previous_week_total"`
	PreviousWeekTransactions int             `json:"previous_week_transactions"`
	HourlyTarget             decimal.Decimal `json:"hourly_target"`
	HourlySales              []HourlySales   `json:"hourly_sales"`
}

// HourlySales ventas acumuladas en una franja horaria ("9:00", "10:00", ...).
type HourlySales struct {
	Hour  string          `json:"hour"`
	Sales decimal.Decimal `json:"sales"`
}

package dto

import "github.com/shopspring/decimal"

// SalesAnalyticsDTO respuesta de GET /api/dashboard/ventas.
type SalesAnalyticsDTO struct {
	TodaySales        TodaySalesDTO         `json:"today_sales"`
	Comparison        WeekComparisonDTO     `json:"comparison"`
	HourlySales       []HourlySalesDTO      `json:"hourly_sales"`
	TopProducts       []TopProductDTO       `json:"top_products"`
	PerformanceAlerts []PerformanceAlertDTO `json:"performance_alerts"`
	GeneratedAt       string                `json:"generated_at"`
}

// TodaySalesDTO monto y número de transacciones del día.
type TodaySalesDTO struct {
	Amount       decimal.Decimal `json:"amount"`
	Transactions int             `json:"transactions"`
}

// WeekComparisonDTO variación porcentual frente al mismo día de la semana anterior.
type WeekComparisonDTO struct {
	PreviousAmount            decimal.Decimal `json:"previous_amount"`
	PreviousTransactions      int             `json:"previous_transactions"`
	AmountChangePercent       decimal.Decimal `json:"amount_change_percent"`
	TransactionsChangePercent decimal.Decimal `json:"transactions_change_percent"`
}

// HourlySalesDTO punto de la serie horaria.
type HourlySalesDTO struct {
	Hour  string          `json:"hour"`
	Sales decimal.Decimal `json:"sales"`
}

// TopProductDTO producto más vendido.
type TopProductDTO struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	UnitsSold decimal.Decimal `json:"units_sold"`
	Sales     decimal.Decimal `json:"sales"`
}

// PerformanceAlertDTO alerta del tablero: warning | info.
type PerformanceAlertDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

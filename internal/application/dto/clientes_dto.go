package dto

import "github.com/shopspring/decimal"

// CustomerAnalyticsDTO respuesta de GET /api/dashboard/clientes.
type CustomerAnalyticsDTO struct {
	PurchasePatterns         PurchasePatternsDTO     `json:"purchase_patterns"`
	Segmentation             CustomerSegmentationDTO `json:"customer_segmentation"`
	FrequentlyBoughtTogether []ProductPairDTO        `json:"frequently_bought_together"`
	GeneratedAt              string                  `json:"generated_at"`
}

// PurchasePatternsDTO ticket promedio y artículos por transacción, con su historia mensual.
type PurchasePatternsDTO struct {
	AvgTicket                  decimal.Decimal `json:"avg_ticket"`
	ItemsPerTransaction        decimal.Decimal `json:"items_per_transaction"`
	AvgTicketHistory           []MonthValueDTO `json:"avg_ticket_history"`
	ItemsPerTransactionHistory []MonthValueDTO `json:"items_per_transaction_history"`
}

// MonthValueDTO punto de una serie mensual ("Ene", "Feb", ...).
type MonthValueDTO struct {
	Month string          `json:"month"`
	Year  int             `json:"year"`
	Value decimal.Decimal `json:"value"`
}

// CustomerSegmentationDTO segmentos por frecuencia y por valor.
type CustomerSegmentationDTO struct {
	NewVsRecurring     NewVsRecurringDTO      `json:"new_vs_recurring"`
	ValueSegmentation  ValueSegmentationDTO   `json:"value_segmentation"`
	HighValueCustomers []HighValueCustomerDTO `json:"high_value_customers"`
}

// NewVsRecurringDTO conteos y porcentajes (0–100) de clientes nuevos y recurrentes.
type NewVsRecurringDTO struct {
	New              int             `json:"new"`
	Recurring        int             `json:"recurring"`
	NewPercent       decimal.Decimal `json:"new_percent"`
	RecurringPercent decimal.Decimal `json:"recurring_percent"`
}

// ValueSegmentationDTO clientes con al menos una compra según gasto total.
type ValueSegmentationDTO struct {
	HighValue          int             `json:"high_value"`
	MediumValue        int             `json:"medium_value"`
	LowValue           int             `json:"low_value"`
	HighValuePercent   decimal.Decimal `json:"high_value_percent"`
	MediumValuePercent decimal.Decimal `json:"medium_value_percent"`
	LowValuePercent    decimal.Decimal `json:"low_value_percent"`
}

// HighValueCustomerDTO fila del top de clientes de alto valor.
type HighValueCustomerDTO struct {
	CustomerID  string          `json:"id"`
	Name        string          `json:"name"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	Visits      int             `json:"visits"`
	AvgPerVisit decimal.Decimal `json:"avg_per_visit"`
}

// ProductPairDTO par de productos comprados juntos.
// Confidence = frecuencia del par / frecuencia del primer producto (0–1).
type ProductPairDTO struct {
	Product1   string          `json:"product1"`
	Product2   string          `json:"product2"`
	Frequency  int             `json:"frequency"`
	Confidence decimal.Decimal `json:"confidence"`
}

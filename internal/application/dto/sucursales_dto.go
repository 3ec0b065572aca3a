package dto

import "github.com/shopspring/decimal"

// BranchAnalyticsDTO respuesta de GET /api/dashboard/sucursales.
type BranchAnalyticsDTO struct {
	Period                  string                 `json:"period"`                   // daily | weekly | monthly
	Ranking                 []BranchRankingDTO     `json:"ranking"`
	PerformanceIndicators   []BranchPerformanceDTO `json:"performance_indicators"`
	ProfitabilityComparison []BranchProfitDTO      `json:"profitability_comparison"`
	GeneratedAt             string                 `json:"generated_at"`
}

// BranchRankingDTO ventas de una sede en el período y crecimiento (%) frente al período anterior.
// Growth es nil cuando el período anterior no tuvo ventas.
type BranchRankingDTO struct {
	BranchID     string           `json:"id"`
	Name         string           `json:"name"`
	Sales        decimal.Decimal  `json:"sales"`
	Transactions int              `json:"transactions"`
	Growth       *decimal.Decimal `json:"growth"`
}

// BranchPerformanceDTO indicadores de desempeño.
// Performance = ventas de la sede / ventas de la mejor sede × 100.
type BranchPerformanceDTO struct {
	BranchID    string          `json:"id"`
	Name        string          `json:"name"`
	Customers   int             `json:"customers"`
	AvgTicket   decimal.Decimal `json:"avg_ticket"`
	Performance decimal.Decimal `json:"performance"`
	Status      string          `json:"status"`      // excellent | good | average | warning
}

// BranchProfitDTO rentabilidad por sede. MarginBand: alto (≥ 28), medio (≥ 25), bajo.
type BranchProfitDTO struct {
	BranchID   string          `json:"id"`
	Name       string          `json:"name"`
	Revenue    decimal.Decimal `json:"revenue"`
	Costs      decimal.Decimal `json:"costs"`
	Profit     decimal.Decimal `json:"profit"`
	Margin     decimal.Decimal `json:"margin"`
	MarginBand string          `json:"margin_band"`
}

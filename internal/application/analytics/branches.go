package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// Períodos del ranking de sedes.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// Estados de desempeño de una sede.
const (
	PerformanceExcellent = "excellent"
	PerformanceGood      = "good"
	PerformanceAverage   = "average"
	PerformanceWarning   = "warning"
)

// Bandas de margen.
const (
	MarginBandHigh   = "alto"
	MarginBandMedium = "medio"
	MarginBandLow    = "bajo"
)

// Periods períodos válidos en orden de presentación.
var Periods = []string{PeriodDaily, PeriodWeekly, PeriodMonthly}

// PeriodLength duración del período; error si el período no es válido.
func PeriodLength(period string) (time.Duration, error) {
	switch period {
	case PeriodDaily:
		return 24 * time.Hour, nil
	case PeriodWeekly:
		return 7 * 24 * time.Hour, nil
	case PeriodMonthly:
		return 30 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("%w: periodo %q (daily, weekly o monthly)", domain.ErrInvalidInput, period)
}

// PerformanceStatus clasifica el puntaje de desempeño (0–100).
func PerformanceStatus(score decimal.Decimal) string {
	switch {
	case score.GreaterThanOrEqual(decimal.NewFromInt(perfExcellent)):
		return PerformanceExcellent
	case score.GreaterThanOrEqual(decimal.NewFromInt(perfGood)):
		return PerformanceGood
	case score.GreaterThanOrEqual(decimal.NewFromInt(perfAverage)):
		return PerformanceAverage
	default:
		return PerformanceWarning
	}
}

// MarginBand clasifica el margen porcentual.
func MarginBand(margin decimal.Decimal) string {
	switch {
	case margin.GreaterThanOrEqual(decimal.NewFromInt(marginHigh)):
		return MarginBandHigh
	case margin.GreaterThanOrEqual(decimal.NewFromInt(marginMedium)):
		return MarginBandMedium
	default:
		return MarginBandLow
	}
}

type branchAcc struct {
	id        string
	name      string
	sales     decimal.Decimal
	prevSales decimal.Decimal
	txCount   int
	customers map[string]struct{}
}

// BuildBranchAnalytics ranking por período, indicadores de desempeño y rentabilidad por sede.
// La ventana actual es (now − período, now]; la anterior, la ventana de igual duración previa.
func BuildBranchAnalytics(
	branches []entity.Branch,
	txs []entity.SaleRecord,
	summary []entity.BranchSummary,
	period string,
	now time.Time,
) (*dto.BranchAnalyticsDTO, error) {
	length, err := PeriodLength(period)
	if err != nil {
		return nil, err
	}
	curStart := now.Add(-length)
	prevStart := curStart.Add(-length)

	accs := make(map[string]*branchAcc)
	order := make([]string, 0, len(branches))
	get := func(id string) *branchAcc {
		a, ok := accs[id]
		if !ok {
			a = &branchAcc{id: id, name: id, sales: decimal.Zero, prevSales: decimal.Zero, customers: map[string]struct{}{}}
			accs[id] = a
			order = append(order, id)
		}
		return a
	}
	for _, b := range branches {
		if b.BranchID == "" {
			continue
		}
		a := get(b.BranchID)
		if b.Name != "" {
			a.name = b.Name
		}
	}

	for _, tx := range txs {
		if tx.BranchID == "" || tx.CreatedAt.IsZero() {
			continue
		}
		at := tx.CreatedAt.Time
		switch {
		case at.After(curStart) && !at.After(now):
			a := get(tx.BranchID)
			a.sales = a.sales.Add(tx.Total)
			a.txCount++
			if tx.CustomerID != "" {
				a.customers[tx.CustomerID] = struct{}{}
			}
		case at.After(prevStart) && !at.After(curStart):
			a := get(tx.BranchID)
			a.prevSales = a.prevSales.Add(tx.Total)
		}
	}

	ranked := make([]*branchAcc, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, accs[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].sales.Equal(ranked[j].sales) {
			return ranked[i].sales.GreaterThan(ranked[j].sales)
		}
		return ranked[i].id < ranked[j].id
	})

	best := decimal.Zero
	if len(ranked) > 0 {
		best = ranked[0].sales
	}

	ranking := make([]dto.BranchRankingDTO, 0, len(ranked))
	perf := make([]dto.BranchPerformanceDTO, 0, len(ranked))
	for _, a := range ranked {
		var growth *decimal.Decimal
		if !a.prevSales.IsZero() {
			g := percent(a.sales.Sub(a.prevSales), a.prevSales)
			growth = &g
		}
		ranking = append(ranking, dto.BranchRankingDTO{
			BranchID:     a.id,
			Name:         a.name,
			Sales:        a.sales.Round(2),
			Transactions: a.txCount,
			Growth:       growth,
		})

		score := percent(a.sales, best).Round(1)
		perf = append(perf, dto.BranchPerformanceDTO{
			BranchID:    a.id,
			Name:        a.name,
			Customers:   len(a.customers),
			AvgTicket:   ratio(a.sales, decimal.NewFromInt(int64(a.txCount))),
			Performance: score,
			Status:      PerformanceStatus(score),
		})
	}

	return &dto.BranchAnalyticsDTO{
		Period:                  period,
		Ranking:                 ranking,
		PerformanceIndicators:   perf,
		ProfitabilityComparison: profitability(summary, accs),
		GeneratedAt:             now.UTC().Format(time.RFC3339),
	}, nil
}

// profitability margen = (ingresos − costos) / ingresos × 100, ordenado de mayor a menor.
func profitability(summary []entity.BranchSummary, accs map[string]*branchAcc) []dto.BranchProfitDTO {
	out := make([]dto.BranchProfitDTO, 0, len(summary))
	for _, s := range summary {
		name := s.BranchID
		if a, ok := accs[s.BranchID]; ok {
			name = a.name
		}
		profit := s.Revenue.Sub(s.Costs)
		margin := percent(profit, s.Revenue).Round(1)
		out = append(out, dto.BranchProfitDTO{
			BranchID:   s.BranchID,
			Name:       name,
			Revenue:    s.Revenue.Round(2),
			Costs:      s.Costs.Round(2),
			Profit:     profit.Round(2),
			Margin:     margin,
			MarginBand: MarginBand(margin),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Margin.Equal(out[j].Margin) {
			return out[i].Margin.GreaterThan(out[j].Margin)
		}
		return out[i].BranchID < out[j].BranchID
	})
	return out
}

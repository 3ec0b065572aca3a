package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// Tipos de alerta del tablero de ventas.
const (
	AlertWarning = "warning"
	AlertInfo    = "info"
)

// BuildSalesAnalytics ventas del día, comparación semanal, serie horaria, top de
// productos y alertas. rt puede ser nil (sin datos en tiempo real).
func BuildSalesAnalytics(
	rt *entity.RealTimeSales,
	trending []entity.TrendingProduct,
	products []entity.Product,
	now time.Time,
) *dto.SalesAnalyticsDTO {
	if rt == nil {
		rt = &entity.RealTimeSales{}
	}

	hourly := make([]dto.HourlySalesDTO, 0, len(rt.HourlySales))
	for _, h := range rt.HourlySales {
		hourly = append(hourly, dto.HourlySalesDTO{Hour: h.Hour, Sales: h.Sales.Round(2)})
	}

	catalog := make(map[string]entity.Product, len(products))
	for _, p := range products {
		catalog[p.ProductID] = p
	}

	top := make([]dto.TopProductDTO, 0, len(trending))
	for _, t := range trending {
		name := t.Name
		if name == "" {
			name = catalog[t.ProductID].Name
		}
		if name == "" {
			name = t.ProductID
		}
		top = append(top, dto.TopProductDTO{
			ProductID: t.ProductID,
			Name:      name,
			UnitsSold: t.UnitsSold,
			Sales:     t.Revenue.Round(2),
		})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].UnitsSold.GreaterThan(top[j].UnitsSold)
	})
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	alerts := make([]dto.PerformanceAlertDTO, 0)
	if n := len(rt.HourlySales); n > 0 && rt.HourlyTarget.IsPositive() {
		last := rt.HourlySales[n-1]
		if last.Sales.LessThan(rt.HourlyTarget) {
			alerts = append(alerts, dto.PerformanceAlertDTO{
				Type: AlertWarning,
				Message: fmt.Sprintf("Las ventas de la franja %s (%s) están por debajo del objetivo por hora (%s)",
					last.Hour, last.Sales.StringFixed(0), rt.HourlyTarget.StringFixed(0)),
			})
		}
	}
	for _, t := range top {
		p, ok := catalog[t.ProductID]
		if ok && isLowStock(p) {
			alerts = append(alerts, dto.PerformanceAlertDTO{
				Type:    AlertInfo,
				Message: fmt.Sprintf("%s está en tendencia y tiene stock bajo (%s unidades)", t.Name, p.Stock.StringFixed(0)),
			})
		}
	}

	prevTx := decimal.NewFromInt(int64(rt.PreviousWeekTransactions))
	return &dto.SalesAnalyticsDTO{
		TodaySales: dto.TodaySalesDTO{
			Amount:       rt.TodayTotal.Round(2),
			Transactions: rt.TodayTransactions,
		},
		Comparison: dto.WeekComparisonDTO{
			PreviousAmount:       rt.PreviousWeekTotal.Round(2),
			PreviousTransactions: rt.PreviousWeekTransactions,
			AmountChangePercent:  percent(rt.TodayTotal.Sub(rt.PreviousWeekTotal), rt.PreviousWeekTotal).Round(1),
			TransactionsChangePercent: percent(
				decimal.NewFromInt(int64(rt.TodayTransactions)).Sub(prevTx), prevTx,
			).Round(1),
		},
		HourlySales:       hourly,
		TopProducts:       top,
		PerformanceAlerts: alerts,
		GeneratedAt:       now.UTC().Format(time.RFC3339),
	}
}

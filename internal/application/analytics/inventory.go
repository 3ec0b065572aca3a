package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// Estados de rotación por categoría.
const (
	RotationHigh    = "alta"
	RotationOptimal = "optima"
	RotationLow     = "baja"
)

// daysOfInventory stock / ventas diarias. nil si el producto no rota (ventas diarias ≤ 0).
func daysOfInventory(p entity.Product) *decimal.Decimal {
	if !p.DailySales.IsPositive() {
		return nil
	}
	d := p.Stock.Div(p.DailySales).Round(1)
	return &d
}

// isLowStock días de inventario ≤ 5 o stock en o por debajo del punto de reorden.
func isLowStock(p entity.Product) bool {
	if p.Stock.LessThanOrEqual(p.ReorderPoint) {
		return true
	}
	d := daysOfInventory(p)
	return d != nil && d.LessThanOrEqual(decimal.NewFromInt(lowStockMaxDays))
}

// isOverstock días de inventario ≥ 30, o stock positivo sin ventas.
func isOverstock(p entity.Product) bool {
	d := daysOfInventory(p)
	if d == nil {
		return p.Stock.IsPositive()
	}
	return d.GreaterThanOrEqual(decimal.NewFromInt(overstockMinDays))
}

// RotationStatus clasifica la rotación frente a la tasa ideal.
func RotationStatus(rate, ideal decimal.Decimal) string {
	switch {
	case rate.GreaterThanOrEqual(ideal.Mul(rotationHighRatio)):
		return RotationHigh
	case rate.GreaterThanOrEqual(ideal):
		return RotationOptimal
	default:
		return RotationLow
	}
}

// BuildInventoryAnalytics alertas de stock, vencimientos, rotación por categoría y pérdidas.
func BuildInventoryAnalytics(products []entity.Product, now time.Time) *dto.InventoryAnalyticsDTO {
	out := &dto.InventoryAnalyticsDTO{
		LowStock:         make([]dto.StockAlertDTO, 0),
		ExpiringSoon:     make([]dto.ExpiringProductDTO, 0),
		Overstock:        make([]dto.StockAlertDTO, 0),
		CategoryRotation: make([]dto.CategoryRotationDTO, 0),
		LossIndicators: dto.LossIndicatorsDTO{
			Expiration: decimal.Zero,
			Shrinkage:  decimal.Zero,
			Total:      decimal.Zero,
		},
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}

	type categoryAcc struct {
		dailySales decimal.Decimal
		stock      decimal.Decimal
	}
	categories := make(map[string]*categoryAcc)
	today := startOfDay(now)
	expiration, shrinkage := decimal.Zero, decimal.Zero

	for _, p := range products {
		if isLowStock(p) {
			out.LowStock = append(out.LowStock, stockAlert(p))
		}
		if isOverstock(p) {
			out.Overstock = append(out.Overstock, stockAlert(p))
		}
		if !p.ExpirationDate.IsZero() {
			exp := p.ExpirationDate.Time.In(now.Location())
			days := int(startOfDay(exp).Sub(today).Hours() / 24)
			if days >= 0 && days <= expiringWithinDays {
				out.ExpiringSoon = append(out.ExpiringSoon, dto.ExpiringProductDTO{
					ProductID:           p.ProductID,
					Name:                p.Name,
					Category:            p.Category,
					Stock:               p.Stock,
					ExpirationDate:      exp.Format("2006-01-02"),
					DaysUntilExpiration: days,
				})
			}
		}

		cat := p.Category
		if cat == "" {
			cat = "Sin categoría"
		}
		acc, ok := categories[cat]
		if !ok {
			acc = &categoryAcc{dailySales: decimal.Zero, stock: decimal.Zero}
			categories[cat] = acc
		}
		acc.dailySales = acc.dailySales.Add(p.DailySales)
		acc.stock = acc.stock.Add(p.Stock)

		expiration = expiration.Add(p.ExpiredUnits.Mul(p.Cost))
		shrinkage = shrinkage.Add(p.ShrinkageUnits.Mul(p.Cost))
	}

	sortAlerts(out.LowStock, true)
	sortAlerts(out.Overstock, false)
	sort.SliceStable(out.ExpiringSoon, func(i, j int) bool {
		return out.ExpiringSoon[i].DaysUntilExpiration < out.ExpiringSoon[j].DaysUntilExpiration
	})

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	window := decimal.NewFromInt(rotationWindowDays)
	for _, name := range names {
		acc := categories[name]
		rate := ratio(acc.dailySales.Mul(window), acc.stock)
		ideal := IdealRotation(name)
		out.CategoryRotation = append(out.CategoryRotation, dto.CategoryRotationDTO{
			Category:     name,
			RotationRate: rate,
			IdealRate:    ideal,
			Status:       RotationStatus(rate, ideal),
		})
	}

	out.LossIndicators = dto.LossIndicatorsDTO{
		Expiration: expiration.Round(2),
		Shrinkage:  shrinkage.Round(2),
		Total:      expiration.Add(shrinkage).Round(2),
	}
	return out
}

func stockAlert(p entity.Product) dto.StockAlertDTO {
	return dto.StockAlertDTO{
		ProductID:       p.ProductID,
		Name:            p.Name,
		Category:        p.Category,
		Stock:           p.Stock,
		ReorderPoint:    p.ReorderPoint,
		DaysOfInventory: daysOfInventory(p),
	}
}

// sortAlerts ordena por días de inventario; los productos sin rotación van al final
// en orden ascendente y al principio en orden descendente.
func sortAlerts(alerts []dto.StockAlertDTO, asc bool) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i].DaysOfInventory, alerts[j].DaysOfInventory
		switch {
		case a == nil && b == nil:
			return alerts[i].ProductID < alerts[j].ProductID
		case a == nil:
			return !asc
		case b == nil:
			return asc
		case asc:
			return a.LessThan(*b)
		default:
			return a.GreaterThan(*b)
		}
	})
}

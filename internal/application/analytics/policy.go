package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Umbrales de negocio. Son política fija del tablero, no configuración.
const (
	recurringMinTransactions = 3  // ≥ 3 compras → cliente recurrente
	topHighValueCustomers    = 5  // filas del top de clientes de alto valor
	topProductPairs          = 8  // filas de "comprados juntos"
	historyMonths            = 6  // meses en las series de patrones de compra
	lowStockMaxDays          = 5  // días de inventario ≤ 5 → stock bajo
	overstockMinDays         = 30 // días de inventario ≥ 30 → sobrestock
	expiringWithinDays       = 7  // vence en ≤ 7 días
	rotationWindowDays       = 30 // la rotación se expresa por mes
	topProductsLimit         = 10 // top de productos en Ventas
	perfExcellent            = 90 // % de la mejor sede
	perfGood                 = 80
	perfAverage              = 70
	marginHigh               = 28 // margen % banda alta
	marginMedium             = 25
)

var (
	hundred           = decimal.NewFromInt(100)
	highValueSpend    = decimal.NewFromInt(100000) // gasto total > 100.000 → alto valor
	occasionalSpend   = decimal.NewFromInt(50000)  // gasto total < 50.000 → ocasional
	rotationHighRatio = decimal.NewFromFloat(1.2)
	defaultIdealRate  = decimal.NewFromFloat(2.0)
)

// idealRotation tasa de rotación mensual esperada por categoría.
var idealRotation = map[string]decimal.Decimal{
	"Lácteos":           decimal.NewFromFloat(3.5),
	"Panadería":         decimal.NewFromFloat(5.0),
	"Cárnicos":          decimal.NewFromFloat(3.0),
	"Abarrotes":         decimal.NewFromFloat(1.5),
	"Bebidas":           decimal.NewFromFloat(4.5),
	"Limpieza":          decimal.NewFromFloat(2.0),
	"Frutas y Verduras": decimal.NewFromFloat(6.0),
}

// IdealRotation devuelve la tasa ideal de la categoría o 2.0 si no está en la tabla.
func IdealRotation(category string) decimal.Decimal {
	if r, ok := idealRotation[category]; ok {
		return r
	}
	return defaultIdealRate
}

var monthAbbr = [...]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// monthShort etiqueta corta del mes, ej: "Mar".
func monthShort(m time.Month) string {
	return monthAbbr[m-1]
}

// percent part/whole × 100 con 2 decimales; 0 si whole es 0.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// ratio a/b con 2 decimales; 0 si b es 0.
func ratio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b).Round(2)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

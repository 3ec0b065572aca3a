package entity

import "github.com/shopspring/decimal"

// Product producto del catálogo con su posición de inventario (GET /api/productos).
// DailySales es el promedio de unidades vendidas por día; las unidades vencidas y de
// merma se acumulan en el período reportado por la API.
type Product struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Cost           decimal.Decimal `json:"cost"`
	Stock          decimal.Decimal `json:"stock"`
	ReorderPoint   decimal.Decimal `json:"reorder_point"`
	DailySales     decimal.Decimal `json:"daily_sales"`
	ExpirationDate FlexTime        `json:"expiration_date"`
	ExpiredUnits   decimal.Decimal `json:"expired_units"`
	ShrinkageUnits decimal.Decimal `json:"shrinkage_units"`
}

// TrendingProduct producto en tendencia (GET /api/analytics/productos/trending).
type TrendingProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitsSold decimal.Decimal `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

package dto

import "github.com/shopspring/decimal"

// InventoryAnalyticsDTO respuesta de GET /api/dashboard/inventario.
type InventoryAnalyticsDTO struct {
	LowStock         []StockAlertDTO       `json:"low_stock"`
	ExpiringSoon     []ExpiringProductDTO  `json:"expiring_soon"`
	Overstock        []StockAlertDTO       `json:"overstock"`
	CategoryRotation []CategoryRotationDTO `json:"category_rotation"`
	LossIndicators   LossIndicatorsDTO     `json:"loss_indicators"`
	GeneratedAt      string                `json:"generated_at"`
}

// StockAlertDTO producto con stock bajo o sobrestock.
// DaysOfInventory es nil cuando el producto no tiene ventas diarias (sin rotación).
type StockAlertDTO struct {
	ProductID       string           `json:"id"`
	Name            string           `json:"name"`
	Category        string           `json:"category"`
	Stock           decimal.Decimal  `json:"stock"`
	ReorderPoint    decimal.Decimal  `json:"reorder_point"`
	DaysOfInventory *decimal.Decimal `json:"days_of_inventory"`
}

// ExpiringProductDTO producto que vence en los próximos días.
type ExpiringProductDTO struct {
	ProductID           string          `json:"id"`
	Name                string          `json:"name"`
	Category            string          `json:"category"`
	Stock               decimal.Decimal `json:"stock"`
	ExpirationDate      string          `json:"expiration_date"`       // YYYY-MM-DD
	DaysUntilExpiration int             `json:"days_until_expiration"`
}

// CategoryRotationDTO rotación mensual de una categoría frente a su tasa ideal.
// Status: "alta" (≥ 1.2 × ideal), "optima" (≥ ideal) o "baja".
type CategoryRotationDTO struct {
	Category     string          `json:"category"`
	RotationRate decimal.Decimal `json:"rotation_rate"`
	IdealRate    decimal.Decimal `json:"ideal_rate"`
	Status       string          `json:"status"`
}

// LossIndicatorsDTO pérdidas valoradas a costo.
type LossIndicatorsDTO struct {
	Expiration decimal.Decimal `json:"expiration"`
	Shrinkage  decimal.Decimal `json:"shrinkage"`
	Total      decimal.Decimal `json:"total"`
}

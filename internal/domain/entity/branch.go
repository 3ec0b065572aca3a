package entity

import "github.com/shopspring/decimal"

// Branch sede física de MegaMart (GET /api/sedes).
type Branch struct {
	BranchID string `json:"branch_id"`
	Name     string `json:"name"`
	City     string `json:"city,omitempty"`
	Address  string `json:"address,omitempty"`
}

// BranchSummary resumen financiero por sede (GET /api/resumen/transacciones).
type BranchSummary struct {
	BranchID     string          `json:"branch_id"`
	Revenue      decimal.Decimal `json:"revenue"`
	Costs        decimal.Decimal `json:"costs"`
	Transactions int             `json:"transactions"`
}

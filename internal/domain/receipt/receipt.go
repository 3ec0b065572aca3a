// Package receipt: comprobante de una venta completada en caja y su código de verificación.
// Algoritmo: SHA-384 sobre una concatenación fija de campos, sin separadores.
package receipt

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// Receipt comprobante archivado de una venta completada.
type Receipt struct {
	TransactionID    string             `json:"transaction_id"`
	Transaction      entity.Transaction `json:"transaction"`
	VerificationCode string             `json:"verification_code"`
	IssuedAt         time.Time          `json:"issued_at"`
	IssuedBy         string             `json:"issued_by,omitempty"`
}

// CodeParams campos que entran en el código de verificación, en el orden de la cadena.
type CodeParams struct {
	TransactionID string
	CompletedAt   time.Time
	Subtotal      decimal.Decimal
	Discounts     decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	CustomerID    string // cédula; solo cuentan los dígitos
	BranchID      string
}

// ParamsFrom arma los parámetros a partir de la transacción. Si completed_at viene vacío
// se usa fallback (momento de emisión del comprobante).
func ParamsFrom(tx entity.Transaction, fallback time.Time) CodeParams {
	completed := tx.CompletedAt.Time
	if completed.IsZero() {
		completed = fallback
	}
	return CodeParams{
		TransactionID: tx.TransactionID,
		CompletedAt:   completed,
		Subtotal:      tx.Subtotal,
		Discounts:     tx.DiscountTotal(),
		Total:         tx.Total,
		AmountPaid:    tx.AmountPaid,
		CustomerID:    tx.CustomerID,
		BranchID:      tx.BranchID,
	}
}

// VerificationCode calcula el hash hexadecimal del comprobante.
// Cadena: TransactionID + CompletedAt(RFC3339 UTC) + Subtotal + Descuentos + Total + Pagado + dígitos de la cédula + BranchID.
// Montos con punto decimal y 2 decimales, sin separador de miles (ej: 7500.00).
func VerificationCode(p CodeParams) (string, error) {
	txID := strings.TrimSpace(p.TransactionID)
	if txID == "" {
		return "", fmt.Errorf("receipt: transaction_id es obligatorio")
	}
	if p.CompletedAt.IsZero() {
		return "", fmt.Errorf("receipt: fecha de cierre es obligatoria")
	}
	branch := strings.TrimSpace(p.BranchID)
	if branch == "" {
		return "", fmt.Errorf("receipt: branch_id es obligatorio")
	}

	cadena := txID +
		p.CompletedAt.UTC().Format(time.RFC3339) +
		formatAmount(p.Subtotal) +
		formatAmount(p.Discounts) +
		formatAmount(p.Total) +
		formatAmount(p.AmountPaid) +
		onlyDigits(p.CustomerID) +
		branch

	hash := sha512.Sum384([]byte(cadena))
	return hex.EncodeToString(hash[:]), nil
}

// New construye el comprobante de una transacción completada.
func New(tx entity.Transaction, issuedBy string, now time.Time) (*Receipt, error) {
	code, err := VerificationCode(ParamsFrom(tx, now))
	if err != nil {
		return nil, err
	}
	return &Receipt{
		TransactionID:    tx.TransactionID,
		Transaction:      tx.Clone(),
		VerificationCode: code,
		IssuedAt:         now.UTC(),
		IssuedBy:         issuedBy,
	}, nil
}

// Verify indica si el código almacenado corresponde a la transacción.
func (r *Receipt) Verify() bool {
	code, err := VerificationCode(ParamsFrom(r.Transaction, r.IssuedAt))
	return err == nil && code == r.VerificationCode
}

func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package receipt_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Vector de prueba calculado con SHA-384:
//
//	Cadena = "TX-001" + "2024-03-01T10:05:00Z" + "10000.00" + "1000.00" +
//	         "9000.00" + "10000.00" + "1234567890" + "S1"
// ──────────────────────────────────────────────────────────────────────────────

const testCodeExpected = "03c516e647d4f5e16e4d4cedef69d63ba899b64baf2e4355deb68dc3e506d30bab183dcadd2b088171541decf68396a5"

var testCompletedAt = time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)

func completedTx() entity.Transaction {
	return entity.Transaction{
		TransactionID: "TX-001",
		CustomerID:    "1.234.567.890",
		BranchID:      "S1",
		Items: []entity.LineItem{
			{ProductID: "P-1", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), Subtotal: decimal.NewFromInt(10000)},
		},
		Discounts:     []entity.Discount{{PromotionCode: "PROMO10", Type: "percentage", Amount: decimal.NewFromInt(1000)}},
		Subtotal:      decimal.NewFromInt(10000),
		Total:         decimal.NewFromInt(9000),
		PaymentMethod: entity.PaymentCash,
		AmountPaid:    decimal.NewFromInt(10000),
		Change:        decimal.NewFromInt(1000),
		CompletedAt:   entity.NewFlexTime(testCompletedAt),
	}
}

func TestVerificationCode_VectorExacto(t *testing.T) {
	code, err := receipt.VerificationCode(receipt.ParamsFrom(completedTx(), time.Time{}))
	require.NoError(t, err)
	assert.Equal(t, testCodeExpected, code)
	assert.Len(t, code, 96, "SHA-384 en hex ocupa 96 caracteres")
}

func TestVerificationCode_ZonaHorariaNoAfecta(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	p := receipt.ParamsFrom(completedTx(), time.Time{})
	p.CompletedAt = testCompletedAt.In(bogota)

	code, err := receipt.VerificationCode(p)
	require.NoError(t, err)
	assert.Equal(t, testCodeExpected, code)
}

func TestVerificationCode_CamposObligatorios(t *testing.T) {
	p := receipt.ParamsFrom(completedTx(), time.Time{})
	p.TransactionID = " "
	_, err := receipt.VerificationCode(p)
	assert.Error(t, err)

	p = receipt.ParamsFrom(completedTx(), time.Time{})
	p.CompletedAt = time.Time{}
	_, err = receipt.VerificationCode(p)
	assert.Error(t, err)
}

func TestNew_UsaFechaDeEmisionSiFaltaCierre(t *testing.T) {
	tx := completedTx()
	tx.CompletedAt = entity.FlexTime{}

	r, err := receipt.New(tx, "cajero-1", testCompletedAt)
	require.NoError(t, err)
	assert.Equal(t, testCodeExpected, r.VerificationCode)
	assert.True(t, r.Verify())

	r.Transaction.Total = decimal.NewFromInt(1)
	assert.False(t, r.Verify(), "un total alterado invalida el código")
}

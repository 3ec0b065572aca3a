package receiptxml_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/receiptxml"
)

func sampleReceipt(t *testing.T) *receipt.Receipt {
	t.Helper()
	tx := entity.Transaction{
		TransactionID: "TX-001",
		CustomerID:    "1234567890",
		BranchID:      "S1",
		Items:         []entity.LineItem{{ProductID: "P1", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), Subtotal: decimal.NewFromInt(10000)}},
		Discounts:     []entity.Discount{{PromotionCode: "PROMO10", Type: "percent", Amount: decimal.NewFromInt(1000)}},
		Subtotal:      decimal.NewFromInt(10000),
		Total:         decimal.NewFromInt(9000),
		PaymentMethod: entity.PaymentCash,
		AmountPaid:    decimal.NewFromInt(10000),
		Change:        decimal.NewFromInt(1000),
		CompletedAt:   entity.FlexTime{Time: time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)},
	}
	rc, err := receipt.New(tx, "u-cajero", time.Date(2024, 3, 1, 10, 6, 0, 0, time.UTC))
	require.NoError(t, err)
	return rc
}

func TestRenderXML_ContenidoYHuella(t *testing.T) {
	rc := sampleReceipt(t)
	out, err := receiptxml.NewBuilder().RenderXML(context.Background(), rc)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Comprobante", root.Tag)
	assert.Equal(t, "TX-001", root.SelectElement("TransaccionID").Text())
	assert.Equal(t, "2024-03-01T10:05:00Z", root.SelectElement("FechaCierre").Text())
	assert.Equal(t, rc.VerificationCode, root.SelectElement("CodigoVerificacion").Text())
	assert.Equal(t, "9000.00", root.SelectElement("Totales").SelectAttrValue("Total", ""))
	assert.Equal(t, "1000.00", root.SelectElement("Totales").SelectAttrValue("Descuentos", ""))
	assert.Len(t, root.SelectElement("Productos").SelectElements("Producto"), 1)

	ok, err := receiptxml.VerifyDigest(out)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRenderXML_Determinista(t *testing.T) {
	rc := sampleReceipt(t)
	a, err := receiptxml.NewBuilder().RenderXML(context.Background(), rc)
	require.NoError(t, err)
	b, err := receiptxml.NewBuilder().RenderXML(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.False(t, strings.HasPrefix(string(a), "<?xml"), "la forma canónica no lleva declaración XML")
}

func TestVerifyDigest_DetectaAlteracion(t *testing.T) {
	out, err := receiptxml.NewBuilder().RenderXML(context.Background(), sampleReceipt(t))
	require.NoError(t, err)

	tampered := strings.Replace(string(out), `Total="9000.00"`, `Total="900.00"`, 1)
	require.NotEqual(t, string(out), tampered)

	ok, err := receiptxml.VerifyDigest([]byte(tampered))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRenderXML_SinComprobante(t *testing.T) {
	_, err := receiptxml.NewBuilder().RenderXML(context.Background(), nil)
	assert.Error(t, err)
}

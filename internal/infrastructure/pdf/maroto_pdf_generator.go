// Package pdf genera el comprobante de venta de caja en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: MegaMart + Sede      │  N° Transacción + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + Cédula                                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PRODUCTOS: Cant | Producto | P.Unit | Subtotal              │
//	│  DESCUENTOS: Código | Tipo | Monto                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuentos / TOTAL / Pago / Cambio      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: código de verificación + QR                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// moneyPrinter formatea montos en pesos con la convención es-CO.
var moneyPrinter = message.NewPrinter(language.MustParse("es-CO"))

var paymentLabels = map[string]string{
	entity.PaymentCash:     "Efectivo",
	entity.PaymentCard:     "Tarjeta",
	entity.PaymentTransfer: "Transferencia",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptPDF genera el comprobante de venta con Maroto v2.
type MarotoReceiptPDF struct{}

// NewMarotoReceiptPDF construye el generador.
func NewMarotoReceiptPDF() *MarotoReceiptPDF { return &MarotoReceiptPDF{} }

// RenderPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptPDF) RenderPDF(_ context.Context, rc *receipt.Receipt, customerName, branchName string) ([]byte, error) {
	if rc == nil {
		return nil, fmt.Errorf("pdf: comprobante vacío")
	}
	tx := rc.Transaction

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta "+tx.TransactionID, true).
		WithAuthor("MegaMart", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rc, branchName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(tx, customerName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemsHeaderRow())
	m.AddRows(itemRows(tx.Items)...)

	if len(tx.Discounts) > 0 {
		m.AddRows(line.NewRow(2))
		m.AddRows(discountsHeaderRow())
		m.AddRows(discountRows(tx.Discounts)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(tx))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(rc)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rc *receipt.Receipt, branchName string) core.Row {
	when := rc.Transaction.CompletedAt.Time
	if when.IsZero() {
		when = rc.IssuedAt
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("MegaMart", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Sede: "+nonEmpty(branchName, rc.Transaction.BranchID), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(rc.TransactionID, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+when.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(tx entity.Transaction, customerName string) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(customerName, "Consumidor final"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("Cédula: "+nonEmpty(tx.CustomerID, "-"), props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
	)
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorWhite, Top: 2, Left: 1, Right: 1,
	}))
}

func headerStyle() *props.Cell {
	return &props.Cell{BackgroundColor: colorPrimary}
}

func itemsHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Cant.", 1, align.Center),
		headerCell("Producto", 6, align.Left),
		headerCell("Precio Unit.", 2, align.Right),
		headerCell("Subtotal", 3, align.Right),
	).WithStyle(headerStyle())
}

func itemRows(items []entity.LineItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.ProductID,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatMoney(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				formatMoney(it.Subtotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func discountsHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Código", 4, align.Left),
		headerCell("Tipo", 5, align.Left),
		headerCell("Monto", 3, align.Right),
	).WithStyle(headerStyle())
}

func discountRows(discounts []entity.Discount) []core.Row {
	result := make([]core.Row, 0, len(discounts))
	for _, d := range discounts {
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(d.PromotionCode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(nonEmpty(d.Type, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(
				"-"+formatMoney(d.Amount),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha, una línea cada 5.5 mm.
func totalsRow(tx entity.Transaction) core.Row {
	type totalLine struct {
		label, value string
		grand        bool
	}
	lines := []totalLine{
		{"Subtotal:", formatMoney(tx.Subtotal), false},
		{"Descuentos:", "-" + formatMoney(tx.DiscountTotal()), false},
		{"TOTAL:", formatMoney(tx.Total), true},
		{"Método de pago:", nonEmpty(paymentLabels[tx.PaymentMethod], tx.PaymentMethod), false},
		{"Pagado:", formatMoney(tx.AmountPaid), false},
		{"Cambio:", formatMoney(tx.Change), false},
	}

	labels := make([]core.Component, 0, len(lines))
	values := make([]core.Component, 0, len(lines))
	for i, l := range lines {
		style := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: float64(i) * 5.5}
		valueStyle := props.Text{Size: 9, Align: align.Right, Right: 1, Top: float64(i) * 5.5}
		if l.grand {
			style.Size, style.Color = 10, colorPrimary
			valueStyle.Style, valueStyle.Size, valueStyle.Color = fontstyle.Bold, 10, colorPrimary
		}
		labels = append(labels, text.New(l.label, style))
		values = append(values, text.New(l.value, valueStyle))
	}
	return row.New(36).Add(
		col.New(3),
		col.New(3).Add(labels...),
		col.New(3).Add(values...),
		col.New(3),
	)
}

// footerRows: código de verificación partido + QR.
func footerRows(rc *receipt.Receipt) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("CÓDIGO DE VERIFICACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, chunk := range splitEvery(rc.VerificationCode, 48) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	rows = append(rows, row.New(3))
	if rc.VerificationCode != "" {
		rows = append(rows, row.New(40).Add(
			col.New(3).Add(code.NewQr(rc.TransactionID+":"+rc.VerificationCode, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(9).Add(
				text.New("Conserve este comprobante. El código permite verificar\nlos montos registrados de la venta.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Emitido: "+rc.IssuedAt.Format("02/01/2006 15:04")+" UTC", props.Text{
					Size: 8, Top: 16, Left: 3, Color: colorGray,
				}),
			),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney monto en pesos sin decimales con separadores de miles de es-CO.
func formatMoney(d decimal.Decimal) string {
	return "$" + moneyPrinter.Sprint(number.Decimal(d.Round(0).IntPart()))
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}

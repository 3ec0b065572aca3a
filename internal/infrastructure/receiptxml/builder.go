// Package receiptxml representación XML canónica (C14N) del comprobante de venta.
//
// El documento lleva una Huella: SHA-256 en base64 de la forma canónica del
// comprobante sin el elemento Huella. VerifyDigest la recalcula.
package receiptxml

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
)

const (
	Namespace = "urn:megamart:pos:comprobante:1"
	Version   = "1.0"

	AlgC14N   = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgSHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"
	AlgSHA384 = "SHA-384"

	digestTag = "Huella"
)

// Builder genera el XML del comprobante.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// RenderXML arma el documento, calcula la huella y devuelve la forma canónica.
func (b *Builder) RenderXML(_ context.Context, rc *receipt.Receipt) ([]byte, error) {
	if rc == nil {
		return nil, fmt.Errorf("receiptxml: comprobante vacío")
	}
	doc := build(rc)

	unsigned, err := canonicalDocument(doc)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(unsigned)

	h := doc.Root().CreateElement(digestTag)
	h.CreateAttr("Algoritmo", AlgSHA256)
	h.CreateAttr("Canonicalizacion", AlgC14N)
	h.SetText(base64.StdEncoding.EncodeToString(sum[:]))

	return canonicalDocument(doc)
}

// VerifyDigest comprueba que la Huella corresponda al resto del documento.
func VerifyDigest(data []byte) (bool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false, fmt.Errorf("receiptxml: leer documento: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return false, fmt.Errorf("receiptxml: documento sin raíz")
	}
	h := root.SelectElement(digestTag)
	if h == nil {
		return false, fmt.Errorf("receiptxml: documento sin %s", digestTag)
	}
	want := h.Text()
	root.RemoveChild(h)

	canonical, err := canonicalDocument(doc)
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]) == want, nil
}

func build(rc *receipt.Receipt) *etree.Document {
	tx := rc.Transaction
	doc := etree.NewDocument()

	root := doc.CreateElement("Comprobante")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("Version", Version)

	textElem(root, "TransaccionID", tx.TransactionID)
	textElem(root, "FechaCierre", closedAt(rc).UTC().Format(time.RFC3339))

	em := root.CreateElement("Emision")
	em.CreateAttr("Fecha", rc.IssuedAt.UTC().Format(time.RFC3339))
	if rc.IssuedBy != "" {
		em.CreateAttr("Usuario", clean(rc.IssuedBy))
	}

	root.CreateElement("Cliente").CreateAttr("Cedula", clean(tx.CustomerID))
	root.CreateElement("Sede").CreateAttr("ID", clean(tx.BranchID))

	items := root.CreateElement("Productos")
	for _, it := range tx.Items {
		e := items.CreateElement("Producto")
		e.CreateAttr("Codigo", clean(it.ProductID))
		e.CreateAttr("Cantidad", strconv.Itoa(it.Quantity))
		e.CreateAttr("PrecioUnitario", amount(it.UnitPrice))
		e.CreateAttr("Subtotal", amount(it.Subtotal))
	}

	discounts := root.CreateElement("Descuentos")
	for _, d := range tx.Discounts {
		e := discounts.CreateElement("Descuento")
		e.CreateAttr("Codigo", clean(d.PromotionCode))
		if d.Type != "" {
			e.CreateAttr("Tipo", clean(d.Type))
		}
		e.CreateAttr("Monto", amount(d.Amount))
	}

	tot := root.CreateElement("Totales")
	tot.CreateAttr("Subtotal", amount(tx.Subtotal))
	tot.CreateAttr("Descuentos", amount(tx.DiscountTotal()))
	tot.CreateAttr("Total", amount(tx.Total))
	tot.CreateAttr("MedioPago", clean(tx.PaymentMethod))
	tot.CreateAttr("Pagado", amount(tx.AmountPaid))
	tot.CreateAttr("Cambio", amount(tx.Change))

	code := textElem(root, "CodigoVerificacion", rc.VerificationCode)
	code.CreateAttr("Algoritmo", AlgSHA384)
	return doc
}

func textElem(parent *etree.Element, tag, value string) *etree.Element {
	e := parent.CreateElement(tag)
	e.SetText(clean(value))
	return e
}

// canonicalDocument serializa con etree y canonicaliza con C14N 1.0.
func canonicalDocument(doc *etree.Document) ([]byte, error) {
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("receiptxml: serializar: %w", err)
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(dec)
	if err != nil {
		return nil, fmt.Errorf("receiptxml: canonicalizar: %w", err)
	}
	return out, nil
}

func closedAt(rc *receipt.Receipt) time.Time {
	if t := rc.Transaction.CompletedAt.Time; !t.IsZero() {
		return t
	}
	return rc.IssuedAt
}

func amount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// clean normaliza a NFC: la misma cédula o nombre produce los mismos bytes canónicos.
func clean(s string) string {
	return norm.NFC.String(s)
}

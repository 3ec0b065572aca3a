package pos_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
	"github.com/jhoicas/megamart-analytics/internal/domain/pos"
)

// ──────────────────────────────────────────────────────────────────────────────
// Gateway falso
// ──────────────────────────────────────────────────────────────────────────────

type fakeGateway struct {
	mu sync.Mutex

	beginCalls    int
	addCalls      int
	promoCalls    int
	finalizeCalls int

	beginErr    error
	addErr      error
	addAck      string
	promoAck    string
	finalizeErr error
	final       *entity.Transaction

	// block, si no es nil, detiene AddProduct hasta que se cierre.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeGateway) BeginTransaction(_ context.Context, _, _ string) (*pos.BeginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beginCalls++
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &pos.BeginResult{
		TransactionID: "TX-001",
		CreatedAt:     entity.NewFlexTime(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
	}, nil
}

func (f *fakeGateway) AddProduct(_ context.Context, _, _ string, _ int) (string, error) {
	f.mu.Lock()
	f.addCalls++
	block, entered := f.block, f.entered
	ack, err := f.addAck, f.addErr
	f.mu.Unlock()
	if block != nil {
		close(entered)
		<-block
	}
	return ack, err
}

func (f *fakeGateway) ApplyPromotion(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promoCalls++
	return f.promoAck, nil
}

func (f *fakeGateway) Finalize(_ context.Context, txID, method string, paid decimal.Decimal) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalizeCalls++
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	if f.final != nil {
		out := *f.final
		return &out, nil
	}
	return &entity.Transaction{
		TransactionID: txID,
		PaymentMethod: method,
		AmountPaid:    paid,
		Total:         decimal.Zero,
		Subtotal:      decimal.Zero,
	}, nil
}

func begun(t *testing.T, gw *fakeGateway) *pos.Wizard {
	t.Helper()
	w := pos.NewWizard(gw)
	require.NoError(t, w.Begin(context.Background(), "1234567890", "S1"))
	return w
}

// ──────────────────────────────────────────────────────────────────────────────
// Begin
// ──────────────────────────────────────────────────────────────────────────────

func TestBegin_UnaLlamadaYAvanzaAProductos(t *testing.T) {
	gw := &fakeGateway{}
	w := begun(t, gw)

	st := w.Snapshot()
	assert.Equal(t, 1, gw.beginCalls)
	assert.Equal(t, pos.StepItemEntry, st.Step)
	assert.Equal(t, "Productos", st.StepLabel)
	assert.Equal(t, "TX-001", st.Transaction.TransactionID)
	assert.Equal(t, "1234567890", st.Transaction.CustomerID)
	assert.Equal(t, "S1", st.Transaction.BranchID)
	assert.Equal(t, "Transacción iniciada con éxito", st.Message)
	assert.False(t, st.IsError)
}

func TestBegin_ErrorDelServidorMantienePaso(t *testing.T) {
	gw := &fakeGateway{beginErr: errors.New("HTTP 500")}
	w := pos.NewWizard(gw)

	err := w.Begin(context.Background(), "1234567890", "S1")
	require.Error(t, err)

	st := w.Snapshot()
	assert.Equal(t, pos.StepStart, st.Step)
	assert.Contains(t, st.Message, "Error: Error al iniciar transacción")
	assert.True(t, st.IsError)
	assert.Empty(t, st.Transaction.TransactionID)
}

func TestBegin_CamposVaciosNoLlamanAlServidor(t *testing.T) {
	gw := &fakeGateway{}
	w := pos.NewWizard(gw)

	err := w.Begin(context.Background(), "  ", "S1")
	assert.ErrorIs(t, err, pos.ErrMissingField)
	assert.Equal(t, 0, gw.beginCalls)
	assert.Equal(t, pos.StepStart, w.Snapshot().Step)
}

func TestBegin_FueraDePasoDevuelveErrInvalidStep(t *testing.T) {
	gw := &fakeGateway{}
	w := begun(t, gw)

	err := w.Begin(context.Background(), "1234567890", "S1")
	assert.ErrorIs(t, err, pos.ErrInvalidStep)
	assert.Equal(t, 1, gw.beginCalls)
}

// ──────────────────────────────────────────────────────────────────────────────
// AddProduct / ApplyPromotion
// ──────────────────────────────────────────────────────────────────────────────

func TestAddProduct_Error500MantieneListaYPaso(t *testing.T) {
	gw := &fakeGateway{addErr: errors.New("HTTP 500: Internal Server Error")}
	w := begun(t, gw)

	err := w.AddProduct(context.Background(), "P-1", 2)
	require.Error(t, err)

	st := w.Snapshot()
	assert.Equal(t, pos.StepItemEntry, st.Step)
	assert.Empty(t, st.Transaction.Items)
	assert.Contains(t, st.Message, "Error: ")
	assert.Equal(t, 1, gw.addCalls)
}

func TestAddProduct_AcuseTextoNoModificaLista(t *testing.T) {
	gw := &fakeGateway{addAck: "OK"}
	w := begun(t, gw)

	require.NoError(t, w.AddProduct(context.Background(), "P-1", 1))

	st := w.Snapshot()
	assert.Equal(t, "Producto agregado: OK", st.Message)
	assert.Empty(t, st.Transaction.Items)
}

func TestAddProduct_AcuseJSONAgregaLineaYRecalcula(t *testing.T) {
	gw := &fakeGateway{addAck: `{"product_id":"P-1","quantity":3,"unit_price":"2500"}`}
	w := begun(t, gw)

	require.NoError(t, w.AddProduct(context.Background(), "P-1", 3))

	st := w.Snapshot()
	require.Len(t, st.Transaction.Items, 1)
	assert.True(t, decimal.NewFromInt(7500).Equal(st.Transaction.Items[0].Subtotal))
	assert.True(t, decimal.NewFromInt(7500).Equal(st.Transaction.Subtotal))
	assert.True(t, decimal.NewFromInt(7500).Equal(st.Transaction.Total))
}

func TestApplyPromotion_DescuentoRestaDelTotal(t *testing.T) {
	gw := &fakeGateway{
		addAck:   `{"product_id":"P-1","quantity":2,"unit_price":"5000"}`,
		promoAck: `{"promotion_code":"PROMO10","type":"percentage","amount":"1000"}`,
	}
	w := begun(t, gw)
	require.NoError(t, w.AddProduct(context.Background(), "P-1", 2))
	require.NoError(t, w.ApplyPromotion(context.Background(), "PROMO10"))

	st := w.Snapshot()
	require.Len(t, st.Transaction.Discounts, 1)
	assert.True(t, decimal.NewFromInt(10000).Equal(st.Transaction.Subtotal))
	assert.True(t, decimal.NewFromInt(9000).Equal(st.Transaction.Total))
	assert.True(t, decimal.NewFromInt(1000).Equal(st.Discounts))
	assert.Contains(t, st.Message, "Promoción aplicada: ")
}

func TestAddProduct_CantidadMenorAUnoSeRechaza(t *testing.T) {
	gw := &fakeGateway{}
	w := begun(t, gw)

	err := w.AddProduct(context.Background(), "P-1", 0)
	assert.ErrorIs(t, err, pos.ErrInvalidQuantity)
	assert.Equal(t, 0, gw.addCalls)
}

func TestAddProduct_SegundaAccionConcurrenteDevuelveErrBusy(t *testing.T) {
	gw := &fakeGateway{addAck: "OK", block: make(chan struct{}), entered: make(chan struct{})}
	w := begun(t, gw)

	done := make(chan error, 1)
	go func() { done <- w.AddProduct(context.Background(), "P-1", 1) }()
	<-gw.entered

	assert.True(t, w.Snapshot().Loading)
	err := w.AddProduct(context.Background(), "P-2", 1)
	assert.ErrorIs(t, err, pos.ErrBusy)
	assert.ErrorIs(t, w.ProceedToPayment(), pos.ErrBusy)

	close(gw.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, gw.addCalls)
	assert.False(t, w.Snapshot().Loading)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pago y recibo
// ──────────────────────────────────────────────────────────────────────────────

func TestFinalize_RecalculaCambio(t *testing.T) {
	gw := &fakeGateway{final: &entity.Transaction{
		TransactionID: "TX-001",
		Items:         []entity.LineItem{{ProductID: "P-1", Quantity: 1, UnitPrice: decimal.NewFromInt(7500), Subtotal: decimal.NewFromInt(7500)}},
		Subtotal:      decimal.NewFromInt(7500),
		Total:         decimal.NewFromInt(7500),
		PaymentMethod: entity.PaymentCash,
		AmountPaid:    decimal.NewFromInt(10000),
		Change:        decimal.NewFromInt(999), // valor del servidor que se ignora
	}}
	w := begun(t, gw)
	require.NoError(t, w.ProceedToPayment())

	require.NoError(t, w.Finalize(context.Background(), entity.PaymentCash, decimal.NewFromInt(10000)))

	st := w.Snapshot()
	assert.Equal(t, pos.StepReceipt, st.Step)
	assert.True(t, decimal.NewFromInt(2500).Equal(st.Transaction.Change))
	assert.Equal(t, "1234567890", st.Transaction.CustomerID, "los ids vacíos del servidor se completan con la copia local")
	assert.Equal(t, "Venta finalizada con éxito", st.Message)
	assert.InDelta(t, 99.99, st.Progress, 0.001)
}

func TestFinalize_MetodoDePagoInvalido(t *testing.T) {
	gw := &fakeGateway{}
	w := begun(t, gw)
	require.NoError(t, w.ProceedToPayment())

	err := w.Finalize(context.Background(), "bitcoin", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, pos.ErrInvalidPaymentMethod)
	assert.Equal(t, 0, gw.finalizeCalls)
	assert.Equal(t, pos.StepPayment, w.Snapshot().Step)
}

func TestFinalize_PagoInsuficienteNoLlamaAlServidor(t *testing.T) {
	gw := &fakeGateway{addAck: `{"product_id":"P-1","quantity":1,"unit_price":"5000"}`}
	w := begun(t, gw)
	require.NoError(t, w.AddProduct(context.Background(), "P-1", 1))
	require.NoError(t, w.ProceedToPayment())

	assert.True(t, decimal.NewFromInt(-1000).Equal(w.PreviewChange(decimal.NewFromInt(4000))))

	err := w.Finalize(context.Background(), entity.PaymentCard, decimal.NewFromInt(4000))
	assert.ErrorIs(t, err, pos.ErrInsufficientPayment)
	assert.Equal(t, 0, gw.finalizeCalls)
	assert.False(t, w.Snapshot().Loading)
}

func TestFinalize_PagoInsuficienteNuncaMarcaOcupado(t *testing.T) {
	gw := &fakeGateway{addAck: `{"product_id":"P-1","quantity":1,"unit_price":"5000"}`}
	w := begun(t, gw)
	require.NoError(t, w.AddProduct(context.Background(), "P-1", 1))
	require.NoError(t, w.ProceedToPayment())

	const rounds = 500
	var wg sync.WaitGroup
	finalizeErrs := make([]error, rounds)
	proceedErrs := make([]error, rounds)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			finalizeErrs[i] = w.Finalize(context.Background(), entity.PaymentCash, decimal.NewFromInt(100))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			proceedErrs[i] = w.ProceedToPayment()
		}
	}()
	wg.Wait()

	for i := 0; i < rounds; i++ {
		assert.ErrorIs(t, finalizeErrs[i], pos.ErrInsufficientPayment)
		assert.ErrorIs(t, proceedErrs[i], pos.ErrInvalidStep)
		assert.NotErrorIs(t, proceedErrs[i], pos.ErrBusy)
	}
	assert.Equal(t, 0, gw.finalizeCalls)
	assert.Equal(t, "Error: "+pos.ErrInsufficientPayment.Error(), w.Snapshot().Message)
}

func TestFinalize_ErrorMantienePasoDePago(t *testing.T) {
	gw := &fakeGateway{finalizeErr: errors.New("timeout")}
	w := begun(t, gw)
	require.NoError(t, w.ProceedToPayment())

	require.Error(t, w.Finalize(context.Background(), entity.PaymentTransfer, decimal.Zero))
	st := w.Snapshot()
	assert.Equal(t, pos.StepPayment, st.Step)
	assert.Contains(t, st.Message, "Error: Error al finalizar venta")
}

func TestReset_RestableceValoresPorDefecto(t *testing.T) {
	gw := &fakeGateway{}
	w := begun(t, gw)
	require.NoError(t, w.ProceedToPayment())
	require.NoError(t, w.Finalize(context.Background(), entity.PaymentCard, decimal.NewFromInt(100)))

	require.NoError(t, w.Reset())

	st := w.Snapshot()
	assert.Equal(t, pos.StepStart, st.Step)
	assert.Equal(t, entity.EmptyTransaction(), st.Transaction)
	assert.Empty(t, st.Message)
	assert.Equal(t, 0.0, st.Progress)
}

func TestReset_SoloDesdeRecibo(t *testing.T) {
	w := pos.NewWizard(&fakeGateway{})
	assert.ErrorIs(t, w.Reset(), pos.ErrInvalidStep)
}

func TestProceedToPayment_SinRedNiValidacion(t *testing.T) {
	gw := &fakeGateway{}
	w := begun(t, gw)

	require.NoError(t, w.ProceedToPayment())
	assert.Equal(t, pos.StepPayment, w.Snapshot().Step)
	assert.Equal(t, 0, gw.addCalls+gw.promoCalls+gw.finalizeCalls)
	assert.ErrorIs(t, w.ProceedToPayment(), pos.ErrInvalidStep)
}

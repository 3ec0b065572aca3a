package analytics_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/megamart-analytics/internal/application/analytics"
	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// fakeSource implementa ports.RetailDataSource en memoria.
type fakeSource struct {
	customers []entity.Customer
	txs       []entity.SaleRecord
	products  []entity.Product
	branches  []entity.Branch
	summary   []entity.BranchSummary
	rt        *entity.RealTimeSales
	trending  []entity.TrendingProduct

	txErr error
	calls atomic.Int32
}

func (f *fakeSource) ListCustomers(context.Context) ([]entity.Customer, error) {
	f.calls.Add(1)
	return f.customers, nil
}

func (f *fakeSource) ListTransactions(context.Context) ([]entity.SaleRecord, error) {
	f.calls.Add(1)
	return f.txs, f.txErr
}

func (f *fakeSource) ListProducts(context.Context) ([]entity.Product, error) {
	f.calls.Add(1)
	return f.products, nil
}

func (f *fakeSource) ListBranches(context.Context) ([]entity.Branch, error) {
	f.calls.Add(1)
	return f.branches, nil
}

func (f *fakeSource) TransactionSummary(context.Context) ([]entity.BranchSummary, error) {
	f.calls.Add(1)
	return f.summary, nil
}

func (f *fakeSource) RealTimeSales(context.Context) (*entity.RealTimeSales, error) {
	f.calls.Add(1)
	return f.rt, nil
}

func (f *fakeSource) TrendingProducts(context.Context) ([]entity.TrendingProduct, error) {
	f.calls.Add(1)
	return f.trending, nil
}

func newUseCase(src *fakeSource) *analytics.DashboardUseCase {
	return analytics.NewDashboardUseCase(src).WithClock(func() time.Time { return testNow })
}

func TestDashboard_ClientesConsultaTresColecciones(t *testing.T) {
	customers, txs, products := customerFixture()
	src := &fakeSource{customers: customers, txs: txs, products: products}

	out, err := newUseCase(src).Clientes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(3), src.calls.Load())
	assert.Equal(t, 1, out.Segmentation.NewVsRecurring.Recurring)
	assert.Equal(t, testNow.Format(time.RFC3339), out.GeneratedAt)
}

func TestDashboard_ErrorDeLaFuenteSePropaga(t *testing.T) {
	upstream := errors.New("HTTP 503")
	src := &fakeSource{txErr: upstream}

	_, err := newUseCase(src).Sucursales(context.Background(), analytics.PeriodDaily)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "sucursales: listar transacciones")
}

func TestDashboard_ColeccionesVaciasNoFallan(t *testing.T) {
	uc := newUseCase(&fakeSource{})

	for _, v := range analytics.AllViews() {
		out, err := uc.Build(context.Background(), v)
		require.NoError(t, err, v.Key())
		require.NotNil(t, out, v.Key())
	}

	inv, err := uc.Inventario(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &dto.InventoryAnalyticsDTO{}, inv)
	assert.True(t, inv.LossIndicators.Total.IsZero())
}

func TestParseView(t *testing.T) {
	v, err := analytics.ParseView("Sucursales", "")
	require.NoError(t, err)
	assert.Equal(t, "sucursales:monthly", v.Key())

	v, err = analytics.ParseView("ventas", "weekly")
	require.NoError(t, err)
	assert.Equal(t, "ventas", v.Key(), "el período solo aplica a sucursales")

	_, err = analytics.ParseView("promociones", "")
	assert.ErrorIs(t, err, domain.ErrUnknownView)

	_, err = analytics.ParseView("sucursales", "yearly")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllViews_IncluyeCadaPeriodo(t *testing.T) {
	keys := make([]string, 0)
	for _, v := range analytics.AllViews() {
		keys = append(keys, v.Key())
	}
	assert.ElementsMatch(t, []string{
		"clientes", "inventario", "ventas",
		"sucursales:daily", "sucursales:weekly", "sucursales:monthly",
	}, keys)
}

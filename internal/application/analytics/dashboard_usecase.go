// Package analytics contiene el cálculo de los agregados de las vistas del tablero
// (Clientes, Inventario, Sucursales, Ventas) y el caso de uso que los orquesta.
//
// Los constructores Build* son puros: reciben colecciones ya descargadas y recalculan
// todo en cada llamada. Colecciones vacías producen cifras en cero y listas vacías.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/application/ports"
	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// Vistas del tablero.
const (
	ViewClientes   = "clientes"
	ViewInventario = "inventario"
	ViewSucursales = "sucursales"
	ViewVentas     = "ventas"
)

// View identifica una instantánea: la vista y, para sucursales, el período.
type View struct {
	Name   string
	Period string
}

// Key clave de almacenamiento, ej: "sucursales:weekly".
func (v View) Key() string {
	if v.Period == "" {
		return v.Name
	}
	return v.Name + ":" + v.Period
}

// ParseView valida el nombre de la vista y el período. Para sucursales el período por
// defecto es monthly; las demás vistas ignoran el período.
func ParseView(name, period string) (View, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case ViewClientes, ViewInventario, ViewVentas:
		return View{Name: name}, nil
	case ViewSucursales:
		if period == "" {
			period = PeriodMonthly
		}
		if _, err := PeriodLength(period); err != nil {
			return View{}, err
		}
		return View{Name: name, Period: period}, nil
	}
	return View{}, fmt.Errorf("%w: %q", domain.ErrUnknownView, name)
}

// AllViews todas las instantáneas que mantiene el tablero.
func AllViews() []View {
	views := []View{{Name: ViewClientes}, {Name: ViewInventario}, {Name: ViewVentas}}
	for _, p := range Periods {
		views = append(views, View{Name: ViewSucursales, Period: p})
	}
	return views
}

// DashboardUseCase descarga en paralelo las colecciones de cada vista y las pasa a los
// constructores puros.
type DashboardUseCase struct {
	source ports.RetailDataSource
	now    func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(source ports.RetailDataSource) *DashboardUseCase {
	return &DashboardUseCase{source: source, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// Build calcula la instantánea de la vista indicada.
func (uc *DashboardUseCase) Build(ctx context.Context, v View) (any, error) {
	switch v.Name {
	case ViewClientes:
		return uc.Clientes(ctx)
	case ViewInventario:
		return uc.Inventario(ctx)
	case ViewSucursales:
		return uc.Sucursales(ctx, v.Period)
	case ViewVentas:
		return uc.Ventas(ctx)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownView, v.Name)
}

type customersResult struct {
	rows []entity.Customer
	err  error
}

type transactionsResult struct {
	rows []entity.SaleRecord
	err  error
}

type productsResult struct {
	rows []entity.Product
	err  error
}

// Clientes: /api/clientes + /api/transacciones + /api/productos en paralelo.
func (uc *DashboardUseCase) Clientes(ctx context.Context) (*dto.CustomerAnalyticsDTO, error) {
	custCh := make(chan customersResult, 1)
	txCh := make(chan transactionsResult, 1)
	prodCh := make(chan productsResult, 1)

	go func() {
		rows, err := uc.source.ListCustomers(ctx)
		custCh <- customersResult{rows, err}
	}()
	go func() {
		rows, err := uc.source.ListTransactions(ctx)
		txCh <- transactionsResult{rows, err}
	}()
	go func() {
		rows, err := uc.source.ListProducts(ctx)
		prodCh <- productsResult{rows, err}
	}()

	cust := <-custCh
	txs := <-txCh
	prods := <-prodCh

	if cust.err != nil {
		return nil, fmt.Errorf("clientes: listar clientes: %w", cust.err)
	}
	if txs.err != nil {
		return nil, fmt.Errorf("clientes: listar transacciones: %w", txs.err)
	}
	if prods.err != nil {
		return nil, fmt.Errorf("clientes: listar productos: %w", prods.err)
	}
	return BuildCustomerAnalytics(cust.rows, txs.rows, prods.rows, uc.now()), nil
}

// Inventario: /api/productos.
func (uc *DashboardUseCase) Inventario(ctx context.Context) (*dto.InventoryAnalyticsDTO, error) {
	products, err := uc.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventario: listar productos: %w", err)
	}
	return BuildInventoryAnalytics(products, uc.now()), nil
}

// Sucursales: /api/sedes + /api/transacciones + /api/resumen/transacciones en paralelo.
func (uc *DashboardUseCase) Sucursales(ctx context.Context, period string) (*dto.BranchAnalyticsDTO, error) {
	if _, err := PeriodLength(period); err != nil {
		return nil, err
	}

	type branchesResult struct {
		rows []entity.Branch
		err  error
	}
	type summaryResult struct {
		rows []entity.BranchSummary
		err  error
	}

	brCh := make(chan branchesResult, 1)
	txCh := make(chan transactionsResult, 1)
	sumCh := make(chan summaryResult, 1)

	go func() {
		rows, err := uc.source.ListBranches(ctx)
		brCh <- branchesResult{rows, err}
	}()
	go func() {
		rows, err := uc.source.ListTransactions(ctx)
		txCh <- transactionsResult{rows, err}
	}()
	go func() {
		rows, err := uc.source.TransactionSummary(ctx)
		sumCh <- summaryResult{rows, err}
	}()

	br := <-brCh
	txs := <-txCh
	sum := <-sumCh

	if br.err != nil {
		return nil, fmt.Errorf("sucursales: listar sedes: %w", br.err)
	}
	if txs.err != nil {
		return nil, fmt.Errorf("sucursales: listar transacciones: %w", txs.err)
	}
	if sum.err != nil {
		return nil, fmt.Errorf("sucursales: resumen de transacciones: %w", sum.err)
	}
	return BuildBranchAnalytics(br.rows, txs.rows, sum.rows, period, uc.now())
}

// Ventas: tiempo real + trending + productos en paralelo.
func (uc *DashboardUseCase) Ventas(ctx context.Context) (*dto.SalesAnalyticsDTO, error) {
	type realTimeResult struct {
		rt  *entity.RealTimeSales
		err error
	}
	type trendingResult struct {
		rows []entity.TrendingProduct
		err  error
	}

	rtCh := make(chan realTimeResult, 1)
	trCh := make(chan trendingResult, 1)
	prodCh := make(chan productsResult, 1)

	go func() {
		rt, err := uc.source.RealTimeSales(ctx)
		rtCh <- realTimeResult{rt, err}
	}()
	go func() {
		rows, err := uc.source.TrendingProducts(ctx)
		trCh <- trendingResult{rows, err}
	}()
	go func() {
		rows, err := uc.source.ListProducts(ctx)
		prodCh <- productsResult{rows, err}
	}()

	rt := <-rtCh
	tr := <-trCh
	prods := <-prodCh

	if rt.err != nil {
		return nil, fmt.Errorf("ventas: tiempo real: %w", rt.err)
	}
	if tr.err != nil {
		return nil, fmt.Errorf("ventas: productos en tendencia: %w", tr.err)
	}
	if prods.err != nil {
		return nil, fmt.Errorf("ventas: listar productos: %w", prods.err)
	}
	return BuildSalesAnalytics(rt.rt, tr.rows, prods.rows, uc.now()), nil
}

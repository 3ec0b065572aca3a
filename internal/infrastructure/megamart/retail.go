package megamart

import (
	"context"

	"github.com/jhoicas/megamart-analytics/internal/application/ports"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

var _ ports.RetailDataSource = (*Client)(nil)

// Rutas de lectura.
const (
	pathCustomers     = "/api/clientes"
	pathTransactions  = "/api/transacciones"
	pathProducts      = "/api/productos"
	pathBranches      = "/api/sedes"
	pathSummary       = "/api/resumen/transacciones"
	pathRealTimeSales = "/api/analytics/ventas/tiempo-real"
	pathTrending      = "/api/analytics/productos/trending"
)

// ListCustomers GET /api/clientes.
func (c *Client) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	var rows []entity.Customer
	if err := c.getJSON(ctx, "clientes.listar", pathCustomers, &rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// ListTransactions GET /api/transacciones.
func (c *Client) ListTransactions(ctx context.Context) ([]entity.SaleRecord, error) {
	var rows []entity.SaleRecord
	if err := c.getJSON(ctx, "transacciones.listar", pathTransactions, &rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// ListProducts GET /api/productos.
func (c *Client) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var rows []entity.Product
	if err := c.getJSON(ctx, "productos.listar", pathProducts, &rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// ListBranches GET /api/sedes.
func (c *Client) ListBranches(ctx context.Context) ([]entity.Branch, error) {
	var rows []entity.Branch
	if err := c.getJSON(ctx, "sedes.listar", pathBranches, &rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// TransactionSummary GET /api/resumen/transacciones.
func (c *Client) TransactionSummary(ctx context.Context) ([]entity.BranchSummary, error) {
	var rows []entity.BranchSummary
	if err := c.getJSON(ctx, "resumen.transacciones", pathSummary, &rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// RealTimeSales GET /api/analytics/ventas/tiempo-real.
func (c *Client) RealTimeSales(ctx context.Context) (*entity.RealTimeSales, error) {
	var rt entity.RealTimeSales
	if err := c.getJSON(ctx, "ventas.tiempo-real", pathRealTimeSales, &rt); err != nil {
		return nil, err
	}
	rt.HourlySales = nonNil(rt.HourlySales)
	return &rt, nil
}

// TrendingProducts GET /api/analytics/productos/trending.
func (c *Client) TrendingProducts(ctx context.Context) ([]entity.TrendingProduct, error) {
	var rows []entity.TrendingProduct
	if err := c.getJSON(ctx, "productos.trending", pathTrending, &rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// nonNil convierte un "null" de la API en lista vacía.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

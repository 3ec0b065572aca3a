package ports

import (
	"context"

	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// RetailDataSource puerto de lectura hacia la API de MegaMart.
// Es la única fuente de datos de las vistas de analítica: un adaptador HTTP en
// producción y fakes en memoria en los tests.
type RetailDataSource interface {
	ListCustomers(ctx context.Context) ([]entity.Customer, error)
	ListTransactions(ctx context.Context) ([]entity.SaleRecord, error)
	ListProducts(ctx context.Context) ([]entity.Product, error)
	ListBranches(ctx context.Context) ([]entity.Branch, error)
	TransactionSummary(ctx context.Context) ([]entity.BranchSummary, error)
	RealTimeSales(ctx context.Context) (*entity.RealTimeSales, error)
	TrendingProducts(ctx context.Context) ([]entity.TrendingProduct, error)
}

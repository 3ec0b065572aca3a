package ports

import (
	"context"

	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
)

// ReceiptRepository archivo de comprobantes de ventas completadas.
// Save es idempotente por transaction_id; FindByTransactionID devuelve domain.ErrNotFound si no existe.
type ReceiptRepository interface {
	Save(ctx context.Context, r *receipt.Receipt) error
	FindByTransactionID(ctx context.Context, transactionID string) (*receipt.Receipt, error)
}

// ReceiptRenderer genera las representaciones descargables de un comprobante.
type ReceiptRenderer interface {
	RenderPDF(ctx context.Context, r *receipt.Receipt, customerName, branchName string) ([]byte, error)
	RenderXML(ctx context.Context, r *receipt.Receipt) ([]byte, error)
}

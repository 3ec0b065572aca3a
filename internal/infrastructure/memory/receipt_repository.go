package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/megamart-analytics/internal/application/ports"
	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
)

var _ ports.ReceiptRepository = (*ReceiptRepository)(nil)

// ReceiptRepository archivo de comprobantes en memoria.
type ReceiptRepository struct {
	mu    sync.RWMutex
	items map[string]receipt.Receipt
}

func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{items: make(map[string]receipt.Receipt)}
}

// Save guarda o reemplaza el comprobante de la transacción.
func (r *ReceiptRepository) Save(_ context.Context, rc *receipt.Receipt) error {
	if rc == nil || rc.TransactionID == "" {
		return fmt.Errorf("%w: comprobante sin transaction_id", domain.ErrInvalidInput)
	}
	cp := *rc
	cp.Transaction = rc.Transaction.Clone()
	r.mu.Lock()
	r.items[rc.TransactionID] = cp
	r.mu.Unlock()
	return nil
}

func (r *ReceiptRepository) FindByTransactionID(_ context.Context, transactionID string) (*receipt.Receipt, error) {
	r.mu.RLock()
	rc, ok := r.items[transactionID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	rc.Transaction = rc.Transaction.Clone()
	return &rc, nil
}

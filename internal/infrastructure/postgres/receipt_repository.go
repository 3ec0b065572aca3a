package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/application/ports"
	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate aplica los scripts de migrations/ en orden. Son idempotentes (IF NOT EXISTS).
func Migrate(ctx context.Context, q Querier) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		sql, err := migrations.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migración %s: %w", f, err)
		}
	}
	return nil
}

var _ ports.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo implementación de ports.ReceiptRepository (usable con pool o tx).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Save archiva el comprobante. Un segundo Save de la misma transacción no cambia nada.
func (r *ReceiptRepo) Save(ctx context.Context, rc *receipt.Receipt) error {
	if rc == nil || rc.TransactionID == "" {
		return fmt.Errorf("%w: comprobante sin transaction_id", domain.ErrInvalidInput)
	}
	tx := rc.Transaction
	payload, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("serializar transacción: %w", err)
	}
	var completedAt *time.Time
	if !tx.CompletedAt.IsZero() {
		t := tx.CompletedAt.Time
		completedAt = &t
	}

	query := `
		INSERT INTO pos_receipts (
			transaction_id, customer_id, branch_id, payment_method,
			subtotal, discount_total, total, amount_paid, change_amount,
			completed_at, verification_code, issued_at, issued_by, transaction)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (transaction_id) DO NOTHING`
	_, err = r.q.Exec(ctx, query,
		rc.TransactionID, tx.CustomerID, tx.BranchID, tx.PaymentMethod,
		tx.Subtotal, tx.DiscountTotal(), tx.Total, tx.AmountPaid, tx.Change,
		completedAt, rc.VerificationCode, rc.IssuedAt, rc.IssuedBy, payload,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// FindByTransactionID devuelve domain.ErrNotFound si no hay comprobante.
func (r *ReceiptRepo) FindByTransactionID(ctx context.Context, transactionID string) (*receipt.Receipt, error) {
	query := `
		SELECT transaction_id, total, verification_code, issued_at, issued_by, transaction
		FROM pos_receipts WHERE transaction_id = $1`
	var (
		rc      receipt.Receipt
		total   decimal.Decimal
		payload []byte
	)
	err := r.q.QueryRow(ctx, query, transactionID).Scan(
		&rc.TransactionID, &total, &rc.VerificationCode, &rc.IssuedAt, &rc.IssuedBy, &payload,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	var tx entity.Transaction
	if err := json.Unmarshal(payload, &tx); err != nil {
		return nil, fmt.Errorf("leer transacción archivada: %w", err)
	}
	if !tx.Total.Equal(total) {
		return nil, fmt.Errorf("comprobante %s inconsistente: total %s ≠ %s", transactionID, tx.Total, total)
	}
	rc.Transaction = tx
	rc.IssuedAt = rc.IssuedAt.UTC()
	return &rc, nil
}

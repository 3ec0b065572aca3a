package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
	"github.com/jhoicas/megamart-analytics/internal/domain/receipt"
)

func TestSnapshotStore_ExpiraSegunTTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSnapshotStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ventas", []byte(`{"a":1}`), time.Minute))

	got, ok, err := s.Get(ctx, "ventas")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(got))

	now = now.Add(time.Minute)
	_, ok, err = s.Get(ctx, "ventas")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotStore_CopiaDefensiva(t *testing.T) {
	s := NewSnapshotStore()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", buf, 0))
	buf[0] = 'x'

	got, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
}

func TestReceiptRepository_GuardarYBuscar(t *testing.T) {
	repo := NewReceiptRepository()
	ctx := context.Background()
	rc := &receipt.Receipt{
		TransactionID:    "TX-1",
		Transaction:      entity.Transaction{TransactionID: "TX-1", Items: []entity.LineItem{{ProductID: "P1", Quantity: 1}}},
		VerificationCode: "abc",
	}
	require.NoError(t, repo.Save(ctx, rc))
	rc.Transaction.Items[0].Quantity = 99

	got, err := repo.FindByTransactionID(ctx, "TX-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Transaction.Items[0].Quantity)

	_, err = repo.FindByTransactionID(ctx, "TX-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repo.Save(ctx, &receipt.Receipt{}), domain.ErrInvalidInput)
}

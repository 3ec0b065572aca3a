package pos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/megamart-analytics/internal/domain/pos"
)

func TestSessionStore_ExpiraPorInactividad(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSessionStore(10 * time.Minute)
	s.now = func() time.Time { return now }

	sess := s.Create("u1", pos.NewWizard(nil))

	now = now.Add(9 * time.Minute)
	_, exp, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, now.Add(10*time.Minute), exp, "el acceso renueva el vencimiento")

	now = now.Add(10 * time.Minute)
	_, _, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestSessionStore_Evict(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSessionStore(time.Minute)
	s.now = func() time.Time { return now }

	s.Create("u1", pos.NewWizard(nil))
	s.Create("u2", pos.NewWizard(nil))
	now = now.Add(2 * time.Minute)
	s.Create("u3", pos.NewWizard(nil))

	assert.Equal(t, 2, s.Evict())
	assert.Equal(t, 1, s.Len())
}

func TestSessionStore_RunJanitorTerminaConElContexto(t *testing.T) {
	s := NewSessionStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunJanitor(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("el janitor no terminó")
	}
}

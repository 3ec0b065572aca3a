package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/megamart-analytics/internal/application/analytics"
	"github.com/jhoicas/megamart-analytics/internal/application/refresh"
	"github.com/jhoicas/megamart-analytics/internal/infrastructure/memory"
)

type fakeBuilder struct {
	calls   atomic.Int32
	gate    chan struct{} // si no es nil, Build espera a que se cierre
	entered chan struct{}
	err     error
}

func (b *fakeBuilder) Build(ctx context.Context, v analytics.View) (any, error) {
	b.calls.Add(1)
	if b.entered != nil {
		select {
		case b.entered <- struct{}{}:
		default:
		}
	}
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return map[string]string{"view": v.Key()}, nil
}

type recordingMetrics struct {
	mu          sync.Mutex
	refresh     []string
	failed      int
	storeErrors map[string]int
}

func (m *recordingMetrics) IncSnapshotStoreError(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErrors == nil {
		m.storeErrors = map[string]int{}
	}
	m.storeErrors[op]++
}

func (m *recordingMetrics) ObserveRefresh(view string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = append(m.refresh, view)
	if err != nil {
		m.failed++
	}
}

func (m *recordingMetrics) IncWizardTransition(string, bool) {}

var ventas = analytics.View{Name: analytics.ViewVentas}

// ── Refresh ───────────────────────────────────────────────────────────────────

func TestRefresh_LlamadasConcurrentesCompartenEjecucion(t *testing.T) {
	b := &fakeBuilder{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	r := refresh.New(b, memory.NewSnapshotStore(), nil, zerolog.Nop(), refresh.Config{})

	var wg sync.WaitGroup
	results := make([]*refresh.Snapshot, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = r.Refresh(context.Background(), ventas)
	}()
	<-b.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = r.Refresh(context.Background(), ventas)
	}()
	// Deja que la segunda llamada se una a la ejecución en curso.
	time.Sleep(20 * time.Millisecond)
	close(b.gate)
	wg.Wait()

	assert.Equal(t, int32(1), b.calls.Load())
	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.JSONEq(t, `{"view":"ventas"}`, string(results[1].Payload))
}

func TestRefresh_ErrorNoGuardaYSeRegistra(t *testing.T) {
	store := memory.NewSnapshotStore()
	m := &recordingMetrics{}
	b := &fakeBuilder{err: errors.New("HTTP 503")}
	r := refresh.New(b, store, m, zerolog.Nop(), refresh.Config{})

	_, err := r.Refresh(context.Background(), ventas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refrescar ventas")

	_, ok, _ := store.Get(context.Background(), "ventas")
	assert.False(t, ok)
	assert.Equal(t, 1, m.failed)
}

// unavailableStore simula un Redis caído: toda lectura y escritura falla.
type unavailableStore struct{}

func (unavailableStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func (unavailableStore) Put(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis: connection refused")
}

func TestRefresh_FalloAlGuardarDevuelveInstantanea(t *testing.T) {
	m := &recordingMetrics{}
	b := &fakeBuilder{}
	r := refresh.New(b, unavailableStore{}, m, zerolog.Nop(), refresh.Config{})

	snap, err := r.Refresh(context.Background(), ventas)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.JSONEq(t, `{"view":"ventas"}`, string(snap.Payload))
	assert.Equal(t, 0, m.failed)
	assert.Equal(t, 1, m.storeErrors["put"])
}

// ── Get ───────────────────────────────────────────────────────────────────────

func TestGet_SirveInstantaneaGuardada(t *testing.T) {
	store := memory.NewSnapshotStore()
	require.NoError(t, store.Put(context.Background(), "ventas", []byte(`{"cached":true}`), time.Minute))
	b := &fakeBuilder{}
	r := refresh.New(b, store, nil, zerolog.Nop(), refresh.Config{})

	snap, err := r.Get(context.Background(), ventas)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cached":true}`, string(snap.Payload))
	assert.Equal(t, int32(0), b.calls.Load())
}

func TestGet_CalculaSiNoHayInstantanea(t *testing.T) {
	store := memory.NewSnapshotStore()
	b := &fakeBuilder{}
	r := refresh.New(b, store, nil, zerolog.Nop(), refresh.Config{})

	v := analytics.View{Name: analytics.ViewSucursales, Period: analytics.PeriodWeekly}
	snap, err := r.Get(context.Background(), v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"view":"sucursales:weekly"}`, string(snap.Payload))

	_, ok, _ := store.Get(context.Background(), "sucursales:weekly")
	assert.True(t, ok)
}

// ── Start ─────────────────────────────────────────────────────────────────────

func TestStart_CancelarDetieneTemporizadores(t *testing.T) {
	b := &fakeBuilder{}
	r := refresh.New(b, memory.NewSnapshotStore(), nil, zerolog.Nop(), refresh.Config{
		CustomersInterval: 10 * time.Millisecond,
		Interval:          10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	r.Start(ctx) // no duplica temporizadores

	require.Eventually(t, func() bool {
		return b.calls.Load() >= int32(2*len(analytics.AllViews()))
	}, time.Second, 5*time.Millisecond)

	cancel()
	r.Wait()
	time.Sleep(20 * time.Millisecond)
	after := b.calls.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, after, b.calls.Load())
}

func TestInterval_ClientesUsaSuPropioIntervalo(t *testing.T) {
	r := refresh.New(&fakeBuilder{}, memory.NewSnapshotStore(), nil, zerolog.Nop(), refresh.Config{})
	assert.Equal(t, refresh.DefaultCustomersInterval, r.Interval(analytics.View{Name: analytics.ViewClientes}))
	assert.Equal(t, refresh.DefaultInterval, r.Interval(ventas))
}

func TestGet_AlmacenCaidoCalculaYSirve(t *testing.T) {
	m := &recordingMetrics{}
	b := &fakeBuilder{}
	r := refresh.New(b, unavailableStore{}, m, zerolog.Nop(), refresh.Config{})

	snap, err := r.Get(context.Background(), ventas)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.JSONEq(t, `{"view":"ventas"}`, string(snap.Payload))
	assert.Equal(t, int32(1), b.calls.Load())
	assert.Equal(t, 1, m.storeErrors["get"])
	assert.Equal(t, 1, m.storeErrors["put"])
}

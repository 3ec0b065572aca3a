// Package refresh mantiene las instantáneas del tablero al día: un temporizador por vista,
// ejecuciones de la misma vista agrupadas con singleflight y resultados en un SnapshotStore.
package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/megamart-analytics/internal/application/analytics"
	"github.com/jhoicas/megamart-analytics/internal/application/ports"
)

// Intervalos por defecto.
const (
	DefaultCustomersInterval = 120 * time.Second
	DefaultInterval          = 30 * time.Second
)

// Builder calcula la instantánea de una vista (analytics.DashboardUseCase).
type Builder interface {
	Build(ctx context.Context, v analytics.View) (any, error)
}

// Config intervalos por vista y tiempos de vida de las instantáneas.
type Config struct {
	CustomersInterval time.Duration
	Interval          time.Duration
	// SnapshotTTL vida de la instantánea en el almacén; 0 = 3 × intervalo de la vista.
	SnapshotTTL time.Duration
	// RunTimeout tope de cada cálculo; 0 = sin tope propio (solo el ctx).
	RunTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.CustomersInterval <= 0 {
		c.CustomersInterval = DefaultCustomersInterval
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// Snapshot instantánea servida por el tablero.
type Snapshot struct {
	View    analytics.View
	Payload []byte // JSON
}

// Refresher programa y agrupa los cálculos de las vistas.
type Refresher struct {
	builder Builder
	store   ports.SnapshotStore
	metrics ports.Metrics
	log     zerolog.Logger
	cfg     Config
	views   []analytics.View

	group singleflight.Group

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// New construye el Refresher para todas las vistas del tablero.
func New(builder Builder, store ports.SnapshotStore, metrics ports.Metrics, log zerolog.Logger, cfg Config) *Refresher {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Refresher{
		builder: builder,
		store:   store,
		metrics: metrics,
		log:     log.With().Str("component", "refresher").Logger(),
		cfg:     cfg.withDefaults(),
		views:   analytics.AllViews(),
	}
}

// Interval intervalo de la vista: clientes usa CustomersInterval, el resto Interval.
func (r *Refresher) Interval(v analytics.View) time.Duration {
	if v.Name == analytics.ViewClientes {
		return r.cfg.CustomersInterval
	}
	return r.cfg.Interval
}

func (r *Refresher) ttl(v analytics.View) time.Duration {
	if r.cfg.SnapshotTTL > 0 {
		return r.cfg.SnapshotTTL
	}
	return 3 * r.Interval(v)
}

// Start lanza un temporizador por vista y un primer cálculo inmediato. Cancelar ctx detiene
// todos los temporizadores; los cálculos en curso observan el mismo ctx. Una segunda
// llamada mientras está en marcha no hace nada.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	for _, v := range r.views {
		r.wg.Add(1)
		go r.loop(ctx, v)
	}
	r.log.Info().Int("views", len(r.views)).Msg("refresco periódico iniciado")
}

// Wait bloquea hasta que todos los temporizadores terminen (tras cancelar el ctx de Start).
func (r *Refresher) Wait() {
	r.wg.Wait()
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Refresher) loop(ctx context.Context, v analytics.View) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.Interval(v))
	defer ticker.Stop()

	r.runQuiet(ctx, v)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runQuiet(ctx, v)
		}
	}
}

func (r *Refresher) runQuiet(ctx context.Context, v analytics.View) {
	if _, err := r.Refresh(ctx, v); err != nil && ctx.Err() == nil {
		r.log.Warn().Err(err).Str("view", v.Key()).Msg("no se pudo refrescar la vista")
	}
}

// Refresh calcula la vista y la guarda. Llamadas concurrentes para la misma vista
// comparten una sola ejecución.
func (r *Refresher) Refresh(ctx context.Context, v analytics.View) (*Snapshot, error) {
	ch := r.group.DoChan(v.Key(), func() (any, error) {
		return r.run(ctx, v)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (r *Refresher) run(ctx context.Context, v analytics.View) (*Snapshot, error) {
	if r.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := r.build(ctx, v)
	r.metrics.ObserveRefresh(v.Key(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("refrescar %s: %w", v.Key(), err)
	}
	r.log.Debug().Str("view", v.Key()).Dur("took", time.Since(start)).Msg("vista refrescada")
	return snap, nil
}

func (r *Refresher) build(ctx context.Context, v analytics.View) (*Snapshot, error) {
	out, err := r.builder.Build(ctx, v)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("serializar: %w", err)
	}
	// Sin almacén la instantánea se sirve igual; el próximo Get la recalcula.
	if err := r.store.Put(ctx, v.Key(), payload, r.ttl(v)); err != nil {
		r.metrics.IncSnapshotStoreError("put")
		r.log.Warn().Err(err).Str("view", v.Key()).Msg("no se pudo guardar la instantánea")
	}
	return &Snapshot{View: v, Payload: payload}, nil
}

// Get sirve la instantánea guardada o la calcula en el momento si no existe.
// Un fallo al leer el almacén se registra y se recalcula.
func (r *Refresher) Get(ctx context.Context, v analytics.View) (*Snapshot, error) {
	payload, ok, err := r.store.Get(ctx, v.Key())
	if err != nil {
		r.metrics.IncSnapshotStoreError("get")
		r.log.Warn().Err(err).Str("view", v.Key()).Msg("almacén de instantáneas no disponible")
	}
	if ok {
		return &Snapshot{View: v, Payload: payload}, nil
	}
	return r.Refresh(ctx, v)
}

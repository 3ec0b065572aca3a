package megamart

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Closed → Open → Half-Open sobre las llamadas a la API de MegaMart.
//
//   - Closed:    las llamadas pasan
//   - Open:      todas fallan de inmediato con ErrCircuitOpen
//   - Half-Open: una sola llamada de prueba a la vez; N éxitos seguidos cierran el circuito

// BreakerState estado del circuito.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen se devuelve mientras el circuito está abierto.
var ErrCircuitOpen = errors.New("circuito abierto")

// BreakerConfig parámetros del circuito.
type BreakerConfig struct {
	FailureThreshold int           // fallos consecutivos para abrir (defecto 5)
	SuccessThreshold int           // éxitos en half-open para cerrar (defecto 2)
	OpenTimeout      time.Duration // tiempo abierto antes de probar (defecto 30s)
}

// Breaker circuito seguro para uso concurrente.
type Breaker struct {
	mu           sync.Mutex
	state        BreakerState
	failures     int
	successes    int
	openedAt     time.Time
	probing      bool // hay una llamada de prueba en curso (half-open)
	cfg          BreakerConfig
	now          func() time.Time
	isFailure    func(error) bool
	onTransition func(from, to BreakerState)
}

// NewBreaker crea un circuito cerrado. Solo los errores para los que isFailure devuelve
// true cuentan como fallo; nil cuenta todos.
func NewBreaker(cfg BreakerConfig, isFailure func(error) bool) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if isFailure == nil {
		isFailure = func(error) bool { return true }
	}
	return &Breaker{cfg: cfg, now: time.Now, isFailure: isFailure}
}

// OnTransition registra un callback para cada cambio de estado (logs, métricas).
func (b *Breaker) OnTransition(fn func(from, to BreakerState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTransition = fn
}

// State estado actual; pasa de open a half-open si venció el timeout.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshLocked()
	return b.state
}

// Execute ejecuta fn a través del circuito.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	b.refreshLocked()
	if b.state == BreakerOpen || (b.state == BreakerHalfOpen && b.probing) {
		b.mu.Unlock()
		return ErrCircuitOpen
	}
	probe := b.state == BreakerHalfOpen
	if probe {
		b.probing = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if probe {
		b.probing = false
	}
	if err != nil && b.isFailure(err) {
		b.onFailureLocked()
	} else {
		b.onSuccessLocked()
	}
	return err
}

func (b *Breaker) refreshLocked() {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.setLocked(BreakerHalfOpen)
	}
}

func (b *Breaker) onFailureLocked() {
	b.failures++
	switch b.state {
	case BreakerClosed:
		if b.failures >= b.cfg.FailureThreshold {
			b.setLocked(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.setLocked(BreakerOpen)
	}
}

func (b *Breaker) onSuccessLocked() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.setLocked(BreakerClosed)
		}
	}
}

func (b *Breaker) setLocked(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.failures = 0
	b.successes = 0
	if to == BreakerOpen {
		b.openedAt = b.now()
	}
	if b.onTransition != nil {
		b.onTransition(from, to)
	}
}

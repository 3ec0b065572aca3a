package pos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/megamart-analytics/internal/domain"
	"github.com/jhoicas/megamart-analytics/internal/domain/pos"
)

// DefaultSessionTTL inactividad tras la cual se descarta una sesión de caja.
const DefaultSessionTTL = 30 * time.Minute

// ErrSessionNotFound la sesión no existe o expiró.
var ErrSessionNotFound = fmt.Errorf("%w: sesión de caja", domain.ErrNotFound)

// Session asistente de venta de un cajero.
type Session struct {
	ID       string
	OwnerID  string
	Wizard   *pos.Wizard
	Created  time.Time
	lastSeen time.Time
}

// SessionStore sesiones en memoria indexadas por UUID, con expiración por inactividad.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore ttl ≤ 0 usa DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

// Create registra un asistente nuevo para ownerID.
func (s *SessionStore) Create(ownerID string, w *pos.Wizard) *Session {
	now := s.now()
	sess := &Session{ID: uuid.NewString(), OwnerID: ownerID, Wizard: w, Created: now, lastSeen: now}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get devuelve la sesión y renueva su vencimiento.
func (s *SessionStore) Get(id string) (*Session, time.Time, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, time.Time{}, ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, time.Time{}, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(sess.lastSeen) >= s.ttl {
		delete(s.sessions, id)
		return nil, time.Time{}, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess, now.Add(s.ttl), nil
}

// Evict elimina las sesiones vencidas y devuelve cuántas quitó.
func (s *SessionStore) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) >= s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Len sesiones vivas (incluye vencidas aún no desalojadas).
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunJanitor desaloja sesiones vencidas cada every hasta que ctx termine.
func (s *SessionStore) RunJanitor(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = s.ttl / 2
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-t.C:
			s.Evict()
		}
	}
}

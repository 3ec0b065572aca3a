// Package memory implementaciones en memoria de los puertos de almacenamiento, para
// despliegues sin Redis ni PostgreSQL y para tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/megamart-analytics/internal/application/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

type snapshotEntry struct {
	payload   []byte
	expiresAt time.Time // cero = no expira
}

// SnapshotStore guarda instantáneas en un mapa protegido por RWMutex.
type SnapshotStore struct {
	mu      sync.RWMutex
	entries map[string]snapshotEntry
	now     func() time.Time
}

// NewSnapshotStore crea el almacén vacío.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{entries: make(map[string]snapshotEntry), now: time.Now}
}

// Put guarda una copia del payload. ttl ≤ 0 no expira.
func (s *SnapshotStore) Put(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	e := snapshotEntry{payload: append([]byte(nil), payload...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Get devuelve una copia del payload si existe y no expiró.
func (s *SnapshotStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.payload...), true, nil
}

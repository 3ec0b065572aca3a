package ports

import (
	"context"
	"time"
)

// SnapshotStore guarda la última instantánea calculada de cada vista (JSON ya serializado).
// Get devuelve found=false si la clave no existe o expiró.
type SnapshotStore interface {
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
}

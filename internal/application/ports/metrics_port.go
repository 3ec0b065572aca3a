package ports

import "time"

// Metrics puerto de instrumentación usado por los casos de uso.
type Metrics interface {
	ObserveRefresh(view string, d time.Duration, err error)
	IncWizardTransition(action string, ok bool)
	// IncSnapshotStoreError fallo del almacén de instantáneas (op = "get" | "put").
	IncSnapshotStoreError(op string)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) ObserveRefresh(string, time.Duration, error) {}
func (NopMetrics) IncWizardTransition(string, bool) {}
func (NopMetrics) IncSnapshotStoreError(string) {}

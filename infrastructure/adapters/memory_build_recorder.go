package adapters

import (
	"context"
	"sync"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

// MemoryBuildRecorder keeps the latest record per build and forwards every
// save to the wrapped recorders.
type MemoryBuildRecorder struct {
	mu      sync.RWMutex
	records map[string]domain.BuildRecord
	next    []outbound.BuildRecorderPort
}

func NewMemoryBuildRecorder(next ...outbound.BuildRecorderPort) *MemoryBuildRecorder {
	return &MemoryBuildRecorder{
		records: make(map[string]domain.BuildRecord),
		next:    next,
	}
}

func (m *MemoryBuildRecorder) Save(ctx context.Context, record domain.BuildRecord) error {
	m.mu.Lock()
	m.records[record.BuildID] = record
	m.mu.Unlock()

	for _, recorder := range m.next {
		if err := recorder.Save(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryBuildRecorder) Get(buildID string) (domain.BuildRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[buildID]
	return record, ok
}

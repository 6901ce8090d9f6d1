package history

import (
	"context"
	"sync"

	"phishguard/internal/models"
)

// MemoryBackend keeps the history in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	reports []models.Report
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Get(_ context.Context) ([]models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.reports), nil
}

func (m *MemoryBackend) Set(_ context.Context, reports []models.Report) error {
	next := cloneAll(reports)
	m.mu.Lock()
	m.reports = next
	m.mu.Unlock()
	return nil
}

func cloneAll(reports []models.Report) []models.Report {
	if reports == nil {
		return nil
	}
	out := make([]models.Report, len(reports))
	for i, r := range reports {
		out[i] = r.Clone()
	}
	return out
}

package store

import (
	"context"
	"slices"
	"sync"
)

// Memory is a Store that keeps records in memory.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Save stores a copy of rec.
func (m *Memory) Save(ctx context.Context, rig string, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rig] = clone(rec)
	return nil
}

func (m *Memory) Load(ctx context.Context, rig string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[rig]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(&rec)
	return &out, nil
}

func (m *Memory) Delete(ctx context.Context, rig string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, rig)
	return nil
}

// List returns the stored rig names in sorted order.
func (m *Memory) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.records))
	for name := range m.records {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *Memory) Close() error { return nil }

func clone(rec *Record) Record {
	out := *rec
	out.Evaluation.Samples = slices.Clone(rec.Evaluation.Samples)
	if rec.Fingerprints != nil {
		out.Fingerprints = make(map[string]string, len(rec.Fingerprints))
		for k, v := range rec.Fingerprints {
			out.Fingerprints[k] = v
		}
	}
	return out
}

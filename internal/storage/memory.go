package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// MemoryStore keeps surveys in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	surveys map[string]Survey
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{surveys: make(map[string]Survey)}
}

func (m *MemoryStore) SaveSurvey(ctx context.Context, s *Survey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prepare(s)
	cp := *s
	cp.Attractors = make([]Attractor, len(s.Attractors))
	for i, a := range s.Attractors {
		a.Cells = slices.Clone(a.Cells)
		cp.Attractors[i] = a
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surveys[s.ID] = cp
	return nil
}

func (m *MemoryStore) Surveys(ctx context.Context) ([]Survey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]Survey, 0, len(m.surveys))
	for _, s := range m.surveys {
		s.Attractors = nil
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Attractors(ctx context.Context, id string) ([]Attractor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.surveys[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSurveyNotFound, id)
	}
	out := make([]Attractor, len(s.Attractors))
	for i, a := range s.Attractors {
		a.Cells = slices.Clone(a.Cells)
		out[i] = a
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

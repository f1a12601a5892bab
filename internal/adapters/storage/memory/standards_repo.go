package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"privescreen/internal/domain/teststandards"
)

type standardsRepo struct {
	mu   sync.RWMutex
	byID map[string]teststandards.TestStandard
}

func NewStandardsRepo() teststandards.Repository {
	return &standardsRepo{
		byID: make(map[string]teststandards.TestStandard),
	}
}

func (r *standardsRepo) Create(ctx context.Context, s teststandards.TestStandard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		return errors.New("standard id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("standard already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *standardsRepo) Update(ctx context.Context, s teststandards.TestStandard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[s.ID]; !exists {
		return ErrNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *standardsRepo) GetByID(ctx context.Context, id string) (teststandards.TestStandard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return teststandards.TestStandard{}, ErrNotFound
	}
	return s, nil
}

func (r *standardsRepo) List(ctx context.Context, onlyActive bool) ([]teststandards.TestStandard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]teststandards.TestStandard, 0)
	for _, s := range r.byID {
		if onlyActive && !s.Active {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

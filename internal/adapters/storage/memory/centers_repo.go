package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"privescreen/internal/domain/centers"
)

type centersRepo struct {
	mu   sync.RWMutex
	byID map[string]centers.DiagnosticCenter
}

func NewCentersRepo() centers.Repository {
	return &centersRepo{
		byID: make(map[string]centers.DiagnosticCenter),
	}
}

func (r *centersRepo) Create(ctx context.Context, c centers.DiagnosticCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("center id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("center already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *centersRepo) Update(ctx context.Context, c centers.DiagnosticCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *centersRepo) GetByID(ctx context.Context, id string) (centers.DiagnosticCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return centers.DiagnosticCenter{}, ErrNotFound
	}
	return c, nil
}

func (r *centersRepo) GetByOperator(ctx context.Context, operatorUserID string) (centers.DiagnosticCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if c.OperatorUserID == operatorUserID {
			return c, nil
		}
	}
	return centers.DiagnosticCenter{}, ErrNotFound
}

func (r *centersRepo) List(ctx context.Context) ([]centers.DiagnosticCenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]centers.DiagnosticCenter, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

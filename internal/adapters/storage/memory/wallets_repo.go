package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"privescreen/internal/domain/wallets"
)

type walletsRepo struct {
	mu    sync.Mutex
	byID  map[string]wallets.Entry
	byRef map[string]struct{} // ownerID + "\x00" + ref
}

func NewWalletsRepo() wallets.Repository {
	return &walletsRepo{
		byID:  make(map[string]wallets.Entry),
		byRef: make(map[string]struct{}),
	}
}

func (r *walletsRepo) Append(ctx context.Context, e wallets.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("entry id required")
	}
	key := e.OwnerID + "\x00" + e.Ref
	if _, exists := r.byRef[key]; exists {
		return wallets.ErrDuplicateRef
	}

	r.byID[e.ID] = e
	r.byRef[key] = struct{}{}
	return nil
}

func (r *walletsRepo) ListByOwner(ctx context.Context, ownerID string) ([]wallets.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]wallets.Entry, 0)
	for _, e := range r.byID {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

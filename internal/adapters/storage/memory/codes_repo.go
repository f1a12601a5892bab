package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"privescreen/internal/domain/codes"
)

type codesRepo struct {
	mu     sync.Mutex
	byID   map[string]codes.AssessmentCode
	byCode map[string]string // code value -> id
}

func NewCodesRepo() codes.Repository {
	return &codesRepo{
		byID:   make(map[string]codes.AssessmentCode),
		byCode: make(map[string]string),
	}
}

func (r *codesRepo) Create(ctx context.Context, c codes.AssessmentCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" || c.Code == "" {
		return errors.New("code id and value required")
	}
	if _, exists := r.byCode[c.Code]; exists {
		return codes.ErrCodeTaken
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("code already exists")
	}

	r.byID[c.ID] = c
	r.byCode[c.Code] = c.ID
	return nil
}

func (r *codesRepo) GetByID(ctx context.Context, id string) (codes.AssessmentCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return codes.AssessmentCode{}, codes.ErrNotFound
	}
	return c, nil
}

func (r *codesRepo) GetByCode(ctx context.Context, code string) (codes.AssessmentCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byCode[code]
	if !ok {
		return codes.AssessmentCode{}, codes.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *codesRepo) ListByPatient(ctx context.Context, patientID string) ([]codes.AssessmentCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]codes.AssessmentCode, 0)
	for _, c := range r.byID {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *codesRepo) MarkExpired(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return codes.ErrNotFound
	}
	if c.Status != codes.StatusPending {
		return nil
	}
	c.Status = codes.StatusExpired
	c.UpdatedAt = at
	r.byID[id] = c
	return nil
}

// Redeem mirrors the conditional UPDATE the postgres repo runs: the check and
// the write happen under one lock, so concurrent redeemers serialize here.
func (r *codesRepo) Redeem(ctx context.Context, id, centerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return codes.ErrNotFound
	}
	if c.Status != codes.StatusPending {
		return codes.ErrConflict
	}

	used := at
	c.Status = codes.StatusUsed
	c.UsedAt = &used
	c.DiagnosticCenterID = centerID
	c.UpdatedAt = at
	r.byID[id] = c
	return nil
}

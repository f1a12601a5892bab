package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"privescreen/internal/domain/results"
)

type resultsRepo struct {
	mu       sync.Mutex
	byID     map[string]results.TestResult
	byCodeID map[string]string // assessment code id -> result id
}

func NewResultsRepo() results.Repository {
	return &resultsRepo{
		byID:     make(map[string]results.TestResult),
		byCodeID: make(map[string]string),
	}
}

func (r *resultsRepo) Create(ctx context.Context, res results.TestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.ID == "" || res.AssessmentCodeID == "" {
		return errors.New("result id and code id required")
	}
	if _, exists := r.byCodeID[res.AssessmentCodeID]; exists {
		return results.ErrDuplicateSubmission
	}

	r.byID[res.ID] = res
	r.byCodeID[res.AssessmentCodeID] = res.ID
	return nil
}

func (r *resultsRepo) GetByID(ctx context.Context, id string) (results.TestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.byID[id]
	if !ok {
		return results.TestResult{}, ErrNotFound
	}
	return res, nil
}

func (r *resultsRepo) ListByPatient(ctx context.Context, patientID string) ([]results.TestResult, error) {
	return r.list(func(res results.TestResult) bool { return res.PatientID == patientID })
}

func (r *resultsRepo) ListByCenter(ctx context.Context, centerID string) ([]results.TestResult, error) {
	return r.list(func(res results.TestResult) bool { return res.DiagnosticCenterID == centerID })
}

func (r *resultsRepo) list(match func(results.TestResult) bool) ([]results.TestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]results.TestResult, 0)
	for _, res := range r.byID {
		if match(res) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *resultsRepo) MarkViewed(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if res.Viewed {
		return nil
	}
	t := at
	res.Viewed = true
	res.ViewedAt = &t
	r.byID[id] = res
	return nil
}

func (r *resultsRepo) MarkSponsorNotified(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if res.SponsorNotified {
		return nil
	}
	t := at
	res.SponsorNotified = true
	res.SponsorNotifiedAt = &t
	r.byID[id] = res
	return nil
}

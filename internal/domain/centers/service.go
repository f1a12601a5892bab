package centers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name           string
	Address        string
	City           string
	State          string
	OperatorUserID string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (DiagnosticCenter, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.OperatorUserID) == "" {
		return DiagnosticCenter{}, ErrInvalidInput
	}

	now := s.now()
	c := DiagnosticCenter{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Address:        strings.TrimSpace(in.Address),
		City:           strings.TrimSpace(in.City),
		State:          strings.TrimSpace(in.State),
		OperatorUserID: strings.TrimSpace(in.OperatorUserID),
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return DiagnosticCenter{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (DiagnosticCenter, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DiagnosticCenter{}, ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return DiagnosticCenter{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) GetByOperator(ctx context.Context, operatorUserID string) (DiagnosticCenter, error) {
	operatorUserID = strings.TrimSpace(operatorUserID)
	if operatorUserID == "" {
		return DiagnosticCenter{}, ErrInvalidInput
	}
	c, err := s.repo.GetByOperator(ctx, operatorUserID)
	if err != nil {
		return DiagnosticCenter{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]DiagnosticCenter, error) {
	return s.repo.List(ctx)
}

// Approve is idempotent: approving an approved center is a no-op.
func (s *Service) Approve(ctx context.Context, id string) (DiagnosticCenter, error) {
	return s.setStatus(ctx, id, StatusApproved)
}

// Suspend is idempotent as well. A suspended center keeps its history; it
// just cannot redeem codes or submit results until re-approved.
func (s *Service) Suspend(ctx context.Context, id string) (DiagnosticCenter, error) {
	return s.setStatus(ctx, id, StatusSuspended)
}

func (s *Service) setStatus(ctx context.Context, id string, status Status) (DiagnosticCenter, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return DiagnosticCenter{}, err
	}

	if c.Status == status {
		return c, nil
	}

	c.Status = status
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return DiagnosticCenter{}, err
	}
	return c, nil
}

// ApprovedCenter resolves an id to an approved center, used by redemption.
func (s *Service) ApprovedCenter(ctx context.Context, id string) (DiagnosticCenter, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return DiagnosticCenter{}, err
	}
	if c.Status != StatusApproved {
		return DiagnosticCenter{}, ErrNotFound
	}
	return c, nil
}

package teststandards

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
	Name       string
	Category   string
	Parameters []ParameterSpec
	PriceKobo  int64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (TestStandard, error) {
	if strings.TrimSpace(in.Name) == "" {
		return TestStandard{}, ErrInvalidInput
	}
	if in.PriceKobo < 0 {
		return TestStandard{}, ErrInvalidInput
	}
	if len(in.Parameters) == 0 {
		return TestStandard{}, ErrInvalidInput
	}
	for _, p := range in.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			return TestStandard{}, ErrInvalidInput
		}
	}

	cat := Category(strings.TrimSpace(strings.ToLower(in.Category)))
	if cat == "" {
		cat = CategoryGeneral
	}

	now := s.now()
	std := TestStandard{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		Category:   cat,
		Parameters: in.Parameters,
		PriceKobo:  in.PriceKobo,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, std); err != nil {
		return TestStandard{}, err
	}
	return std, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (TestStandard, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TestStandard{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]TestStandard, error) {
	return s.repo.List(ctx, onlyActive)
}

// Deactivate retires a standard from the catalog. Codes already issued against
// it stay valid; only new issuance is blocked. Idempotent.
func (s *Service) Deactivate(ctx context.Context, id string) (TestStandard, error) {
	std, err := s.GetByID(ctx, id)
	if err != nil {
		return TestStandard{}, err
	}

	if !std.Active {
		return std, nil
	}

	std.Active = false
	std.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, std); err != nil {
		return TestStandard{}, err
	}
	return std, nil
}

// ActiveStandard is the issuance-side lookup: resolves an id to an active
// standard or reports it unusable. Exposed as a method so the codes module can
// depend on a small interface instead of this package's service.
func (s *Service) ActiveStandard(ctx context.Context, id string) (TestStandard, error) {
	std, err := s.GetByID(ctx, id)
	if err != nil {
		return TestStandard{}, err
	}
	if !std.Active {
		return TestStandard{}, ErrNotFound
	}
	return std, nil
}

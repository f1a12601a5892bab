package teststandards

import "context"

type Repository interface {
	Create(ctx context.Context, s TestStandard) error
	Update(ctx context.Context, s TestStandard) error
	GetByID(ctx context.Context, id string) (TestStandard, error)
	List(ctx context.Context, onlyActive bool) ([]TestStandard, error)
}

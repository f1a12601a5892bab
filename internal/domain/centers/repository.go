package centers

import "context"

type Repository interface {
	Create(ctx context.Context, c DiagnosticCenter) error
	Update(ctx context.Context, c DiagnosticCenter) error
	GetByID(ctx context.Context, id string) (DiagnosticCenter, error)
	GetByOperator(ctx context.Context, operatorUserID string) (DiagnosticCenter, error)
	List(ctx context.Context) ([]DiagnosticCenter, error)
}

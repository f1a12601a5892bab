package codes

import (
	"context"
	"time"
)

type Repository interface {
	// Create fails with ErrCodeTaken when the code value already exists.
	Create(ctx context.Context, c AssessmentCode) error

	GetByID(ctx context.Context, id string) (AssessmentCode, error)
	GetByCode(ctx context.Context, code string) (AssessmentCode, error)
	ListByPatient(ctx context.Context, patientID string) ([]AssessmentCode, error)

	// MarkExpired flips pending → expired. A no-op if the row left pending
	// in the meantime; lazy expiry tolerates lost writes.
	MarkExpired(ctx context.Context, id string, at time.Time) error

	// Redeem is the compare-and-set: it must transition pending → used
	// atomically (UPDATE ... WHERE status = 'pending') and fail with
	// ErrConflict when the row is no longer pending.
	Redeem(ctx context.Context, id, centerID string, at time.Time) error
}

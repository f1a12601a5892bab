package results

import (
	"context"
	"time"
)

type Repository interface {
	// Create fails with ErrDuplicateSubmission when a result already
	// references the same assessment code (1:1 binding).
	Create(ctx context.Context, r TestResult) error

	GetByID(ctx context.Context, id string) (TestResult, error)
	ListByPatient(ctx context.Context, patientID string) ([]TestResult, error)
	ListByCenter(ctx context.Context, centerID string) ([]TestResult, error)

	// Flag writes; both set-once, first write wins.
	MarkViewed(ctx context.Context, id string, at time.Time) error
	MarkSponsorNotified(ctx context.Context, id string, at time.Time) error
}

package notify

import (
	"context"
	"time"
)

// CompletionNotice is what a sponsor learns when a funded test completes.
// It deliberately has no field for findings: sponsors are told that a test
// happened, never what it found.
type CompletionNotice struct {
	AssessmentCodeID string    `json:"assessment_code_id"`
	Code             string    `json:"code"`
	SponsorID        string    `json:"sponsor_id"`
	SponsorType      string    `json:"sponsor_type"`
	CenterName       string    `json:"center_name"`
	CompletedAt      time.Time `json:"completed_at"`
}

// SponsorNotifier delivers completion notices. Implementations own delivery
// semantics (queue, webhook, in-memory); callers treat failures as non-fatal.
type SponsorNotifier interface {
	NotifyResultReady(ctx context.Context, n CompletionNotice) error
}

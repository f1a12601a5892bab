package centers

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusSuspended Status = "suspended"
)

// DiagnosticCenter is a lab enrolled on the marketplace. Only approved
// centers can redeem codes and submit results.
type DiagnosticCenter struct {
	ID string

	Name    string
	Address string
	City    string
	State   string

	// OperatorUserID is the account that acts on behalf of this center.
	OperatorUserID string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

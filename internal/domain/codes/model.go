package codes

import "time"

// AssessmentCode is the token a patient presents at a diagnostic center.
// Rows are never deleted; a code is a permanent audit record.
//
// Invariants:
//   - UsedAt is non-nil iff Status == used.
//   - DiagnosticCenterID is non-empty iff Status == used.
//   - Code, PatientID, TestStandardID and ValidUntil never change after issuance.
type AssessmentCode struct {
	ID string

	// Code is the 12-character token, stored uppercase.
	Code string

	PatientID      string
	TestStandardID string

	SponsorID   string
	SponsorType SponsorType

	Status     Status
	ValidUntil time.Time

	// Set exactly once, at redemption.
	UsedAt             *time.Time
	DiagnosticCenterID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the code is past its validity window at t,
// regardless of what Status says. Expiry is lazily written back, so every
// decision re-derives from ValidUntil.
func (c AssessmentCode) Expired(t time.Time) bool {
	return c.Status == StatusExpired || t.After(c.ValidUntil)
}

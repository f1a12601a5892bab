package results

import "time"

type FindingStatus string

const (
	FindingNormal     FindingStatus = "normal"
	FindingAbnormal   FindingStatus = "abnormal"
	FindingBorderline FindingStatus = "borderline"
)

// Finding is one reported parameter from the lab.
type Finding struct {
	Parameter      string
	Value          string
	ReferenceRange string
	Status         FindingStatus
}

// TestResult answers exactly one redeemed assessment code. Patient, center
// and standard ids are copied from the code at submission time so later
// mutation elsewhere can never corrupt the historical record. The row is
// write-once apart from the two read-receipt flags below, which are owned by
// disjoint actors (patient / notification hook) and never conflict.
type TestResult struct {
	ID string

	AssessmentCodeID string

	PatientID          string
	DiagnosticCenterID string
	TestStandardID     string

	Findings      []Finding
	OverallStatus FindingStatus
	Notes         string

	TestedAt time.Time

	Viewed   bool
	ViewedAt *time.Time

	SponsorNotified   bool
	SponsorNotifiedAt *time.Time

	CreatedAt time.Time
}

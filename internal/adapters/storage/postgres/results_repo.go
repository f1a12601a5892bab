package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"privescreen/internal/domain/results"
)

type ResultsRepo struct {
	db *sql.DB
}

func NewResultsRepo(db *sql.DB) *ResultsRepo {
	return &ResultsRepo{db: db}
}

const resultColumns = `
	id, assessment_code_id, patient_id, diagnostic_center_id, test_standard_id,
	findings, overall_status, notes, tested_at,
	viewed, viewed_at, sponsor_notified, sponsor_notified_at,
	created_at
`

func (r *ResultsRepo) Create(ctx context.Context, res results.TestResult) error {
	findings, err := json.Marshal(res.Findings)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO test_results (
			id, assessment_code_id, patient_id, diagnostic_center_id, test_standard_id,
			findings, overall_status, notes, tested_at,
			viewed, viewed_at, sponsor_notified, sponsor_notified_at,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		res.ID,
		res.AssessmentCodeID,
		res.PatientID,
		res.DiagnosticCenterID,
		res.TestStandardID,
		findings,
		string(res.OverallStatus),
		res.Notes,
		res.TestedAt,
		res.Viewed,
		toNullTime(res.ViewedAt),
		res.SponsorNotified,
		toNullTime(res.SponsorNotifiedAt),
		res.CreatedAt,
	)
	// assessment_code_id carries a UNIQUE constraint: the 1:1 binding is
	// enforced by the store, not by a read-then-write.
	if err != nil && isUniqueViolation(err) {
		return results.ErrDuplicateSubmission
	}
	return err
}

func (r *ResultsRepo) GetByID(ctx context.Context, id string) (results.TestResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+resultColumns+`
		FROM test_results
		WHERE id = $1
	`, id)

	res, err := scanResult(row)
	if err == sql.ErrNoRows {
		return results.TestResult{}, ErrNotFound
	}
	return res, err
}

func (r *ResultsRepo) ListByPatient(ctx context.Context, patientID string) ([]results.TestResult, error) {
	return r.listWhere(ctx, "patient_id = $1", patientID)
}

func (r *ResultsRepo) ListByCenter(ctx context.Context, centerID string) ([]results.TestResult, error) {
	return r.listWhere(ctx, "diagnostic_center_id = $1", centerID)
}

func (r *ResultsRepo) listWhere(ctx context.Context, where, arg string) ([]results.TestResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+resultColumns+`
		FROM test_results
		WHERE `+where+`
		ORDER BY created_at DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]results.TestResult, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ResultsRepo) MarkViewed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE test_results
		SET viewed = TRUE, viewed_at = $2
		WHERE id = $1 AND viewed = FALSE
	`, id, at)
	return err
}

func (r *ResultsRepo) MarkSponsorNotified(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE test_results
		SET sponsor_notified = TRUE, sponsor_notified_at = $2
		WHERE id = $1 AND sponsor_notified = FALSE
	`, id, at)
	return err
}

func scanResult(row rowScanner) (results.TestResult, error) {
	var (
		res             results.TestResult
		findings        []byte
		overall         string
		viewedAt        sql.NullTime
		sponsorNotified sql.NullTime
	)
	if err := row.Scan(
		&res.ID,
		&res.AssessmentCodeID,
		&res.PatientID,
		&res.DiagnosticCenterID,
		&res.TestStandardID,
		&findings,
		&overall,
		&res.Notes,
		&res.TestedAt,
		&res.Viewed,
		&viewedAt,
		&res.SponsorNotified,
		&sponsorNotified,
		&res.CreatedAt,
	); err != nil {
		return results.TestResult{}, err
	}

	if err := json.Unmarshal(findings, &res.Findings); err != nil {
		return results.TestResult{}, err
	}
	res.OverallStatus = results.FindingStatus(overall)
	if viewedAt.Valid {
		t := viewedAt.Time
		res.ViewedAt = &t
	}
	if sponsorNotified.Valid {
		t := sponsorNotified.Time
		res.SponsorNotifiedAt = &t
	}
	return res, nil
}

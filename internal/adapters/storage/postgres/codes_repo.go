package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"privescreen/internal/domain/codes"
)

type CodesRepo struct {
	db *sql.DB
}

func NewCodesRepo(db *sql.DB) *CodesRepo {
	return &CodesRepo{db: db}
}

const codeColumns = `
	id, code, patient_id, test_standard_id,
	sponsor_id, sponsor_type,
	status, valid_until, used_at, diagnostic_center_id,
	created_at, updated_at
`

func (r *CodesRepo) Create(ctx context.Context, c codes.AssessmentCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assessment_codes (
			id, code, patient_id, test_standard_id,
			sponsor_id, sponsor_type,
			status, valid_until, used_at, diagnostic_center_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		c.ID,
		c.Code,
		c.PatientID,
		c.TestStandardID,
		c.SponsorID,
		string(c.SponsorType),
		string(c.Status),
		c.ValidUntil,
		toNullTime(c.UsedAt),
		c.DiagnosticCenterID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return codes.ErrCodeTaken
	}
	return err
}

func (r *CodesRepo) GetByID(ctx context.Context, id string) (codes.AssessmentCode, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *CodesRepo) GetByCode(ctx context.Context, code string) (codes.AssessmentCode, error) {
	return r.getWhere(ctx, "code = $1", code)
}

func (r *CodesRepo) getWhere(ctx context.Context, where, arg string) (codes.AssessmentCode, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return codes.AssessmentCode{}, codes.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+codeColumns+`
		FROM assessment_codes
		WHERE `+where, arg)

	c, err := scanCode(row)
	if err == sql.ErrNoRows {
		return codes.AssessmentCode{}, codes.ErrNotFound
	}
	return c, err
}

func (r *CodesRepo) ListByPatient(ctx context.Context, patientID string) ([]codes.AssessmentCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+codeColumns+`
		FROM assessment_codes
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]codes.AssessmentCode, 0)
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CodesRepo) MarkExpired(ctx context.Context, id string, at time.Time) error {
	// Conditional on pending so a concurrent redemption wins over expiry.
	_, err := r.db.ExecContext(ctx, `
		UPDATE assessment_codes
		SET status = 'expired', updated_at = $2
		WHERE id = $1 AND status = 'pending'
	`, id, at)
	return err
}

// Redeem relies on row-level atomicity of the conditional UPDATE: exactly one
// concurrent caller sees rows_affected = 1.
func (r *CodesRepo) Redeem(ctx context.Context, id, centerID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE assessment_codes
		SET status = 'used', used_at = $2, diagnostic_center_id = $3, updated_at = $2
		WHERE id = $1 AND status = 'pending'
	`, id, at, centerID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return codes.ErrConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCode(row rowScanner) (codes.AssessmentCode, error) {
	var (
		c           codes.AssessmentCode
		sponsorType string
		status      string
		usedAt      sql.NullTime
		centerID    sql.NullString
	)
	if err := row.Scan(
		&c.ID,
		&c.Code,
		&c.PatientID,
		&c.TestStandardID,
		&c.SponsorID,
		&sponsorType,
		&status,
		&c.ValidUntil,
		&usedAt,
		&centerID,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return codes.AssessmentCode{}, err
	}

	c.SponsorType = codes.SponsorType(sponsorType)
	c.Status = codes.Status(status)
	if usedAt.Valid {
		t := usedAt.Time
		c.UsedAt = &t
	}
	if centerID.Valid {
		c.DiagnosticCenterID = centerID.String
	}
	return c, nil
}

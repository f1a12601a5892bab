package postgres

import (
	"context"
	"database/sql"

	"privescreen/internal/domain/centers"
)

type CentersRepo struct {
	db *sql.DB
}

func NewCentersRepo(db *sql.DB) *CentersRepo {
	return &CentersRepo{db: db}
}

const centerColumns = `id, name, address, city, state, operator_user_id, status, created_at, updated_at`

func (r *CentersRepo) Create(ctx context.Context, c centers.DiagnosticCenter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO diagnostic_centers (
			id, name, address, city, state, operator_user_id, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		c.ID,
		c.Name,
		c.Address,
		c.City,
		c.State,
		c.OperatorUserID,
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CentersRepo) Update(ctx context.Context, c centers.DiagnosticCenter) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE diagnostic_centers
		SET name = $2, address = $3, city = $4, state = $5,
		    operator_user_id = $6, status = $7, updated_at = $8
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		c.Address,
		c.City,
		c.State,
		c.OperatorUserID,
		string(c.Status),
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CentersRepo) GetByID(ctx context.Context, id string) (centers.DiagnosticCenter, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+centerColumns+`
		FROM diagnostic_centers
		WHERE id = $1
	`, id)
	return scanCenterRow(row)
}

func (r *CentersRepo) GetByOperator(ctx context.Context, operatorUserID string) (centers.DiagnosticCenter, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+centerColumns+`
		FROM diagnostic_centers
		WHERE operator_user_id = $1
	`, operatorUserID)
	return scanCenterRow(row)
}

func (r *CentersRepo) List(ctx context.Context) ([]centers.DiagnosticCenter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+centerColumns+`
		FROM diagnostic_centers
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]centers.DiagnosticCenter, 0)
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCenterRow(row *sql.Row) (centers.DiagnosticCenter, error) {
	c, err := scanCenter(row)
	if err == sql.ErrNoRows {
		return centers.DiagnosticCenter{}, ErrNotFound
	}
	return c, err
}

func scanCenter(row rowScanner) (centers.DiagnosticCenter, error) {
	var (
		c      centers.DiagnosticCenter
		status string
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Address,
		&c.City,
		&c.State,
		&c.OperatorUserID,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return centers.DiagnosticCenter{}, err
	}
	c.Status = centers.Status(status)
	return c, nil
}

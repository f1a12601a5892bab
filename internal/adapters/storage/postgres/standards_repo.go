package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"privescreen/internal/domain/teststandards"
)

type StandardsRepo struct {
	db *sql.DB
}

func NewStandardsRepo(db *sql.DB) *StandardsRepo {
	return &StandardsRepo{db: db}
}

func (r *StandardsRepo) Create(ctx context.Context, s teststandards.TestStandard) error {
	params, err := json.Marshal(s.Parameters)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO test_standards (
			id, name, category, parameters, price_kobo, active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		s.ID,
		s.Name,
		string(s.Category),
		params,
		s.PriceKobo,
		s.Active,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *StandardsRepo) Update(ctx context.Context, s teststandards.TestStandard) error {
	params, err := json.Marshal(s.Parameters)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE test_standards
		SET name = $2, category = $3, parameters = $4, price_kobo = $5,
		    active = $6, updated_at = $7
		WHERE id = $1
	`,
		s.ID,
		s.Name,
		string(s.Category),
		params,
		s.PriceKobo,
		s.Active,
		s.UpdatedAt,
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

func (r *StandardsRepo) GetByID(ctx context.Context, id string) (teststandards.TestStandard, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, category, parameters, price_kobo, active, created_at, updated_at
		FROM test_standards
		WHERE id = $1
	`, id)

	s, err := scanStandard(row)
	if err == sql.ErrNoRows {
		return teststandards.TestStandard{}, ErrNotFound
	}
	return s, err
}

func (r *StandardsRepo) List(ctx context.Context, onlyActive bool) ([]teststandards.TestStandard, error) {
	q := `
		SELECT id, name, category, parameters, price_kobo, active, created_at, updated_at
		FROM test_standards
	`
	if onlyActive {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]teststandards.TestStandard, 0)
	for rows.Next() {
		s, err := scanStandard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanStandard(row rowScanner) (teststandards.TestStandard, error) {
	var (
		s        teststandards.TestStandard
		category string
		params   []byte
	)
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&category,
		&params,
		&s.PriceKobo,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return teststandards.TestStandard{}, err
	}

	s.Category = teststandards.Category(category)
	if err := json.Unmarshal(params, &s.Parameters); err != nil {
		return teststandards.TestStandard{}, err
	}
	return s, nil
}

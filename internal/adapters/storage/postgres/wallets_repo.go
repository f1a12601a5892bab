package postgres

import (
	"context"
	"database/sql"

	"privescreen/internal/domain/wallets"
)

type WalletsRepo struct {
	db *sql.DB
}

func NewWalletsRepo(db *sql.DB) *WalletsRepo {
	return &WalletsRepo{db: db}
}

// Append inserts a ledger line. (owner_id, ref) carries a UNIQUE constraint
// so retried writes collapse to one entry.
func (r *WalletsRepo) Append(ctx context.Context, e wallets.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallet_entries (
			id, owner_id, entry_type, amount_kobo, ref, memo, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.OwnerID,
		string(e.Type),
		e.AmountKobo,
		e.Ref,
		e.Memo,
		e.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return wallets.ErrDuplicateRef
	}
	return err
}

func (r *WalletsRepo) ListByOwner(ctx context.Context, ownerID string) ([]wallets.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, entry_type, amount_kobo, ref, memo, created_at
		FROM wallet_entries
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]wallets.Entry, 0)
	for rows.Next() {
		var (
			e   wallets.Entry
			typ string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &typ, &e.AmountKobo, &e.Ref, &e.Memo, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = wallets.EntryType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}

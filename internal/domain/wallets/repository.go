package wallets

import "context"

// Repository is append-only: no update, no delete. Append must reject a
// duplicate (OwnerID, Ref) pair with ErrDuplicateRef.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	ListByOwner(ctx context.Context, ownerID string) ([]Entry, error)
}

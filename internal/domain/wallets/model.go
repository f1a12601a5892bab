package wallets

import "time"

type EntryType string

const (
	EntryCredit EntryType = "credit"
	EntryDebit  EntryType = "debit"
)

// Entry is one immutable line in a wallet's ledger. Balances are derived by
// replaying entries; there is no stored balance to drift out of sync.
// Corrections are new entries with the opposite sign, never edits.
type Entry struct {
	ID      string
	OwnerID string

	Type       EntryType
	AmountKobo int64 // always positive; Type carries the sign

	// Ref deduplicates retried writes: one ref, one entry.
	Ref  string
	Memo string

	CreatedAt time.Time
}

func (e Entry) signed() int64 {
	if e.Type == EntryDebit {
		return -e.AmountKobo
	}
	return e.AmountKobo
}

package wallets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu      sync.Mutex
	entries []Entry
	byRef   map[string]bool // ownerID + "\x00" + ref
}

func newTestRepo() *testRepo {
	return &testRepo{byRef: map[string]bool{}}
}

func (r *testRepo) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := e.OwnerID + "\x00" + e.Ref
	if r.byRef[key] {
		return ErrDuplicateRef
	}
	r.byRef[key] = true
	r.entries = append(r.entries, e)
	return nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0)
	for _, e := range r.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_CreditThenBalance(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	e, err := svc.Credit(context.Background(), "ngo-9", 1_000_000, "topup-1", "card payment")
	if err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}
	if e.Type != EntryCredit || e.AmountKobo != 1_000_000 {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.CreatedAt != now {
		t.Fatalf("expected CreatedAt = now")
	}

	balance, err := svc.Balance(context.Background(), "ngo-9")
	if err != nil {
		t.Fatalf("Balance error: %v", err)
	}
	if balance != 1_000_000 {
		t.Fatalf("expected balance 1000000, got %d", balance)
	}
}

func TestService_Debit_ReplaysLedger(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Credit(context.Background(), "ngo-9", 1_000_000, "topup-1", ""); err != nil {
		t.Fatalf("Credit error: %v", err)
	}
	if _, err := svc.Debit(context.Background(), "ngo-9", 600_000, "issue:c1", ""); err != nil {
		t.Fatalf("Debit error: %v", err)
	}

	balance, _ := svc.Balance(context.Background(), "ngo-9")
	if balance != 400_000 {
		t.Fatalf("expected balance 400000, got %d", balance)
	}

	// Overdraft rejected; the ledger never goes negative.
	if _, err := svc.Debit(context.Background(), "ngo-9", 500_000, "issue:c2", ""); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	balance, _ = svc.Balance(context.Background(), "ngo-9")
	if balance != 400_000 {
		t.Fatalf("failed debit must not change the balance, got %d", balance)
	}
}

func TestService_EmptyWalletIsZero(t *testing.T) {
	svc := NewService(newTestRepo())

	balance, err := svc.Balance(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Balance error: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected 0 for missing wallet, got %d", balance)
	}

	if _, err := svc.Debit(context.Background(), "nobody", 1, "ref", ""); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds on empty wallet, got %v", err)
	}
}

func TestService_DuplicateRefRejected(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Credit(context.Background(), "ngo-9", 1_000_000, "topup-1", ""); err != nil {
		t.Fatalf("Credit #1 error: %v", err)
	}
	if _, err := svc.Credit(context.Background(), "ngo-9", 1_000_000, "topup-1", ""); !errors.Is(err, ErrDuplicateRef) {
		t.Fatalf("expected ErrDuplicateRef, got %v", err)
	}

	// Same ref, different owner: fine.
	if _, err := svc.Credit(context.Background(), "emp-1", 500_000, "topup-1", ""); err != nil {
		t.Fatalf("Credit for other owner error: %v", err)
	}

	balance, _ := svc.Balance(context.Background(), "ngo-9")
	if balance != 1_000_000 {
		t.Fatalf("duplicate credit must not double the balance, got %d", balance)
	}
}

func TestService_RejectsBadInput(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Credit(context.Background(), "", 100, "ref", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty owner, got %v", err)
	}
	if _, err := svc.Credit(context.Background(), "ngo-9", 0, "ref", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero amount, got %v", err)
	}
	if _, err := svc.Credit(context.Background(), "ngo-9", -5, "ref", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative amount, got %v", err)
	}
	if _, err := svc.Credit(context.Background(), "ngo-9", 100, "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty ref, got %v", err)
	}
}

func TestService_Debit_ConcurrentOverdraftBlocked(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Credit(context.Background(), "ngo-9", 500_000, "topup-1", ""); err != nil {
		t.Fatalf("Credit error: %v", err)
	}

	// The balance covers exactly one of these.
	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Debit(context.Background(), "ngo-9", 500_000, fmt.Sprintf("issue:c%d", i), "")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInsufficientFunds):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 successful debit, got %d", wins)
	}

	balance, _ := svc.Balance(context.Background(), "ngo-9")
	if balance != 0 {
		t.Fatalf("expected balance 0 after the race, got %d", balance)
	}
}

func TestService_Refund_IdempotentReversal(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Credit(context.Background(), "ngo-9", 500_000, "topup-1", ""); err != nil {
		t.Fatalf("Credit error: %v", err)
	}
	if err := svc.Charge(context.Background(), "ngo-9", 500_000, "issue:c1"); err != nil {
		t.Fatalf("Charge error: %v", err)
	}

	if err := svc.Refund(context.Background(), "ngo-9", 500_000, "issue:c1"); err != nil {
		t.Fatalf("Refund error: %v", err)
	}
	balance, _ := svc.Balance(context.Background(), "ngo-9")
	if balance != 500_000 {
		t.Fatalf("expected the charge reversed, got %d", balance)
	}

	// A replayed reversal is a no-op, not a second credit.
	if err := svc.Refund(context.Background(), "ngo-9", 500_000, "issue:c1"); err != nil {
		t.Fatalf("Refund replay error: %v", err)
	}
	balance, _ = svc.Balance(context.Background(), "ngo-9")
	if balance != 500_000 {
		t.Fatalf("replayed refund must not credit twice, got %d", balance)
	}

	// Nothing booked for a zero-kobo reversal.
	if err := svc.Refund(context.Background(), "ngo-9", 0, "issue:c2"); err != nil {
		t.Fatalf("zero refund error: %v", err)
	}
	entries, _ := svc.Entries(context.Background(), "ngo-9")
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (topup, charge, refund), got %d", len(entries))
	}
}

func TestService_Charge_AdaptsToFunderPort(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Credit(context.Background(), "ngo-9", 1_000_000, "topup-1", ""); err != nil {
		t.Fatalf("Credit error: %v", err)
	}

	if err := svc.Charge(context.Background(), "ngo-9", 500_000, "issue:c1"); err != nil {
		t.Fatalf("Charge error: %v", err)
	}
	balance, _ := svc.Balance(context.Background(), "ngo-9")
	if balance != 500_000 {
		t.Fatalf("expected 500000 after charge, got %d", balance)
	}

	// Zero-kobo charge (free standard) books nothing.
	if err := svc.Charge(context.Background(), "ngo-9", 0, "issue:c2"); err != nil {
		t.Fatalf("zero charge error: %v", err)
	}
	entries, _ := svc.Entries(context.Background(), "ngo-9")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (topup + charge), got %d", len(entries))
	}
}

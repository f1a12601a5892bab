package wallets

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateRef      = errors.New("duplicate entry ref")
)

type Service struct {
	repo Repository
	now  func() time.Time

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		now:    time.Now,
		owners: map[string]*sync.Mutex{},
	}
}

// ownerLock returns the mutex serializing debits for one wallet. The balance
// check and the append must happen under it, or two concurrent debits can
// both observe the same balance and overdraw.
func (s *Service) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.owners[ownerID]
	if !ok {
		l = &sync.Mutex{}
		s.owners[ownerID] = l
	}
	return l
}

// Credit records a top-up. The actual money movement (card, USSD, transfer)
// happens upstream; this only books the confirmed amount. Idempotent per ref.
func (s *Service) Credit(ctx context.Context, ownerID string, amountKobo int64, ref, memo string) (Entry, error) {
	return s.append(ctx, ownerID, EntryCredit, amountKobo, ref, memo)
}

// Debit books a charge against the wallet. Fails with ErrInsufficientFunds
// when the replayed balance cannot cover it.
func (s *Service) Debit(ctx context.Context, ownerID string, amountKobo int64, ref, memo string) (Entry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || amountKobo <= 0 {
		return Entry{}, ErrInvalidInput
	}

	l := s.ownerLock(ownerID)
	l.Lock()
	defer l.Unlock()

	balance, err := s.Balance(ctx, ownerID)
	if err != nil {
		return Entry{}, err
	}
	if balance < amountKobo {
		return Entry{}, ErrInsufficientFunds
	}

	return s.append(ctx, ownerID, EntryDebit, amountKobo, ref, memo)
}

func (s *Service) append(ctx context.Context, ownerID string, typ EntryType, amountKobo int64, ref, memo string) (Entry, error) {
	ownerID = strings.TrimSpace(ownerID)
	ref = strings.TrimSpace(ref)
	if ownerID == "" || ref == "" || amountKobo <= 0 {
		return Entry{}, ErrInvalidInput
	}

	e := Entry{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Type:       typ,
		AmountKobo: amountKobo,
		Ref:        ref,
		Memo:       strings.TrimSpace(memo),
		CreatedAt:  s.now(),
	}

	if err := s.repo.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Balance replays the ledger. A missing wallet is just an empty ledger.
func (s *Service) Balance(ctx context.Context, ownerID string) (int64, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return 0, ErrInvalidInput
	}

	entries, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range entries {
		total += e.signed()
	}
	return total, nil
}

func (s *Service) Entries(ctx context.Context, ownerID string) ([]Entry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Charge adapts the wallet to the codes module's funding port.
func (s *Service) Charge(ctx context.Context, ownerID string, amountKobo int64, ref string) error {
	if amountKobo == 0 {
		return nil // free standards don't touch the ledger
	}
	_, err := s.Debit(ctx, ownerID, amountKobo, ref, "assessment code issuance")
	return err
}

// Refund reverses an earlier charge with a compensating credit. The derived
// ref collapses retries: one reversal per original charge, ever.
func (s *Service) Refund(ctx context.Context, ownerID string, amountKobo int64, ref string) error {
	if amountKobo == 0 {
		return nil
	}
	_, err := s.Credit(ctx, ownerID, amountKobo, "refund:"+strings.TrimSpace(ref), "assessment code issuance reversal")
	if errors.Is(err, ErrDuplicateRef) {
		return nil
	}
	return err
}

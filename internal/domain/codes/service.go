package codes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"privescreen/internal/domain/centers"
	"privescreen/internal/domain/teststandards"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("code not found")
	ErrExpired             = errors.New("code expired")
	ErrAlreadyRedeemed     = errors.New("code already redeemed")
	ErrCenterNotFound      = errors.New("diagnostic center not found")
	ErrInvalidTestStandard = errors.New("test standard inactive or missing")

	// Repository sentinels.
	ErrCodeTaken = errors.New("code value taken")
	ErrConflict  = errors.New("code not pending")
)

const (
	DefaultValidityDays = 30

	// maxGenerateAttempts bounds the collision-retry loop so a pathological
	// collision rate fails deterministically instead of spinning.
	maxGenerateAttempts = 5
)

// StandardsCatalog resolves a test standard id to an active standard.
type StandardsCatalog interface {
	ActiveStandard(ctx context.Context, id string) (teststandards.TestStandard, error)
}

// CenterDirectory resolves a center id to an approved center.
type CenterDirectory interface {
	ApprovedCenter(ctx context.Context, id string) (centers.DiagnosticCenter, error)
}

// Funder charges a funding source for an issuance and reverses the charge
// when the issuance cannot complete. The wallets module implements it; refs
// make retried charges and reversals idempotent.
type Funder interface {
	Charge(ctx context.Context, ownerID string, amountKobo int64, ref string) error
	Refund(ctx context.Context, ownerID string, amountKobo int64, ref string) error
}

type Service struct {
	repo    Repository
	catalog StandardsCatalog
	dir     CenterDirectory
	funder  Funder

	maxValidityDays int
	now             func() time.Time
}

func NewService(repo Repository, catalog StandardsCatalog, dir CenterDirectory, funder Funder, maxValidityDays int) *Service {
	if maxValidityDays <= 0 {
		maxValidityDays = 90
	}
	return &Service{
		repo:            repo,
		catalog:         catalog,
		dir:             dir,
		funder:          funder,
		maxValidityDays: maxValidityDays,
		now:             time.Now,
	}
}

type IssueInput struct {
	TestStandardID string
	SponsorID      string
	SponsorType    string
	ValidityDays   int
}

// Issue creates a pending code for a patient. Sponsored issuance debits the
// sponsor's wallet for the standard's price; self-funded codes settle outside
// the wallet ledger.
func (s *Service) Issue(ctx context.Context, patientID string, in IssueInput) (AssessmentCode, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" || strings.TrimSpace(in.TestStandardID) == "" {
		return AssessmentCode{}, ErrInvalidInput
	}

	sponsorType, ok := parseSponsorType(in.SponsorType)
	if !ok {
		return AssessmentCode{}, ErrInvalidInput
	}
	sponsorID := strings.TrimSpace(in.SponsorID)
	if sponsorType == SponsorSelf {
		// self implies sponsorID == patientID or absent
		if sponsorID != "" && sponsorID != patientID {
			return AssessmentCode{}, ErrInvalidInput
		}
		sponsorID = patientID
	} else if sponsorID == "" {
		return AssessmentCode{}, ErrInvalidInput
	}

	days := in.ValidityDays
	if days == 0 {
		days = DefaultValidityDays
	}
	if days < 1 || days > s.maxValidityDays {
		return AssessmentCode{}, ErrInvalidInput
	}

	std, err := s.catalog.ActiveStandard(ctx, strings.TrimSpace(in.TestStandardID))
	if err != nil {
		return AssessmentCode{}, ErrInvalidTestStandard
	}

	now := s.now()
	c := AssessmentCode{
		ID:             uuid.NewString(),
		PatientID:      patientID,
		TestStandardID: std.ID,
		SponsorID:      sponsorID,
		SponsorType:    sponsorType,
		Status:         StatusPending,
		ValidUntil:     now.AddDate(0, 0, days),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	chargeRef := "issue:" + c.ID
	if sponsorType != SponsorSelf {
		// Charge first so a wallet that cannot cover the price never
		// produces a code. Every failed create below reverses the charge.
		if err := s.funder.Charge(ctx, sponsorID, std.PriceKobo, chargeRef); err != nil {
			return AssessmentCode{}, fmt.Errorf("fund issuance: %w", err)
		}
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			s.reverseCharge(ctx, sponsorType, sponsorID, std.PriceKobo, chargeRef)
			return AssessmentCode{}, err
		}
		c.Code = code

		err = s.repo.Create(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrCodeTaken) {
			s.reverseCharge(ctx, sponsorType, sponsorID, std.PriceKobo, chargeRef)
			return AssessmentCode{}, err
		}
	}
	s.reverseCharge(ctx, sponsorType, sponsorID, std.PriceKobo, chargeRef)
	return AssessmentCode{}, fmt.Errorf("issue code: %d collisions in a row", maxGenerateAttempts)
}

// reverseCharge books the compensating credit for a charge whose issuance
// failed. The idempotent ref lets an operator replay a reversal that could
// not be booked here.
func (s *Service) reverseCharge(ctx context.Context, sponsorType SponsorType, sponsorID string, amountKobo int64, ref string) {
	if sponsorType == SponsorSelf {
		return
	}
	_ = s.funder.Refund(ctx, sponsorID, amountKobo, ref)
}

// Snapshot is what a center sees when it validates a code.
type Snapshot struct {
	Code           string
	PatientID      string
	TestStandardID string
	SponsorType    SponsorType
	ValidUntil     time.Time
	Status         Status
}

type Validation struct {
	Valid    bool
	Reason   Reason
	Snapshot *Snapshot
}

// Validate is read-only apart from the lazy expiry write-back: the first
// observation past ValidUntil flips pending → expired, so the registry
// self-heals without a background sweep. Invalid codes are data, not errors.
func (s *Service) Validate(ctx context.Context, rawCode string) (Validation, error) {
	code := NormalizeCode(rawCode)
	if len(code) != CodeLength {
		return Validation{Valid: false, Reason: ReasonNotFound}, nil
	}

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Validation{Valid: false, Reason: ReasonNotFound}, nil
		}
		return Validation{}, err
	}

	if c.Status == StatusUsed {
		return Validation{Valid: false, Reason: ReasonAlreadyUsed}, nil
	}

	now := s.now()
	if c.Expired(now) {
		if c.Status == StatusPending {
			// Best-effort: a lost write just means the next read heals it.
			_ = s.repo.MarkExpired(ctx, c.ID, now)
		}
		return Validation{Valid: false, Reason: ReasonExpired}, nil
	}

	return Validation{
		Valid: true,
		Snapshot: &Snapshot{
			Code:           c.Code,
			PatientID:      c.PatientID,
			TestStandardID: c.TestStandardID,
			SponsorType:    c.SponsorType,
			ValidUntil:     c.ValidUntil,
			Status:         c.Status,
		},
	}, nil
}

// Redeem binds a center to a pending code at the point of sample collection.
// At-most-once: the repository compare-and-set on status == pending is the
// only guard, so concurrent attempts cannot both succeed.
func (s *Service) Redeem(ctx context.Context, rawCode, centerID string) (AssessmentCode, error) {
	code := NormalizeCode(rawCode)
	if len(code) != CodeLength {
		return AssessmentCode{}, ErrNotFound
	}
	centerID = strings.TrimSpace(centerID)
	if centerID == "" {
		return AssessmentCode{}, ErrInvalidInput
	}

	center, err := s.dir.ApprovedCenter(ctx, centerID)
	if err != nil {
		return AssessmentCode{}, ErrCenterNotFound
	}

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AssessmentCode{}, ErrNotFound
		}
		return AssessmentCode{}, err
	}

	if c.Status == StatusUsed {
		return AssessmentCode{}, ErrAlreadyRedeemed
	}

	now := s.now()
	if c.Expired(now) {
		if c.Status == StatusPending {
			_ = s.repo.MarkExpired(ctx, c.ID, now)
		}
		return AssessmentCode{}, ErrExpired
	}

	if err := s.repo.Redeem(ctx, c.ID, center.ID, now); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost the race. Re-read to say why.
			latest, rerr := s.repo.GetByID(ctx, c.ID)
			if rerr == nil && latest.Status == StatusExpired {
				return AssessmentCode{}, ErrExpired
			}
			return AssessmentCode{}, ErrAlreadyRedeemed
		}
		return AssessmentCode{}, err
	}

	c.Status = StatusUsed
	c.UsedAt = &now
	c.DiagnosticCenterID = center.ID
	c.UpdatedAt = now
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (AssessmentCode, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AssessmentCode{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]AssessmentCode, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// NormalizeCode uppercases and trims a hand-typed code.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

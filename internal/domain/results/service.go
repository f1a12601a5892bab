package results

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"privescreen/internal/domain/centers"
	"privescreen/internal/domain/codes"
	"privescreen/internal/platform/metrics"
	"privescreen/internal/ports/notify"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("result not found")
	ErrCodeNotRedeemed     = errors.New("code not redeemed")
	ErrDuplicateSubmission = errors.New("result already submitted for this code")
	ErrForbidden           = errors.New("forbidden")
)

// CodeReader is the slice of the codes module submission needs.
type CodeReader interface {
	GetByID(ctx context.Context, id string) (codes.AssessmentCode, error)
}

type Service struct {
	repo     Repository
	codes    CodeReader
	notifier notify.SponsorNotifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, codeReader CodeReader, notifier notify.SponsorNotifier, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		codes:    codeReader,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

type SubmitInput struct {
	AssessmentCodeID string
	Findings         []Finding
	OverallStatus    FindingStatus
	Notes            string
	TestedAt         time.Time
}

// Submit records the lab's findings against a redeemed code. The code's
// status stays "used"; the attached result is what marks it complete. The
// sponsor hook fires after the result is stored and only ever carries
// completion metadata, never findings.
func (s *Service) Submit(ctx context.Context, center centers.DiagnosticCenter, in SubmitInput) (TestResult, error) {
	if strings.TrimSpace(in.AssessmentCodeID) == "" || strings.TrimSpace(center.ID) == "" {
		return TestResult{}, ErrInvalidInput
	}
	if len(in.Findings) == 0 {
		return TestResult{}, ErrInvalidInput
	}
	for _, f := range in.Findings {
		if strings.TrimSpace(f.Parameter) == "" || !validFindingStatus(f.Status) {
			return TestResult{}, ErrInvalidInput
		}
	}
	if !validFindingStatus(in.OverallStatus) {
		return TestResult{}, ErrInvalidInput
	}

	code, err := s.codes.GetByID(ctx, strings.TrimSpace(in.AssessmentCodeID))
	if err != nil {
		return TestResult{}, ErrCodeNotRedeemed
	}
	if code.Status != codes.StatusUsed {
		return TestResult{}, ErrCodeNotRedeemed
	}
	if code.DiagnosticCenterID != center.ID {
		// Only the center that collected the sample may report on it.
		return TestResult{}, ErrForbidden
	}

	now := s.now()
	testedAt := in.TestedAt
	if testedAt.IsZero() {
		testedAt = now
	}

	res := TestResult{
		ID:               uuid.NewString(),
		AssessmentCodeID: code.ID,
		// Immutable copies, not live references.
		PatientID:          code.PatientID,
		DiagnosticCenterID: code.DiagnosticCenterID,
		TestStandardID:     code.TestStandardID,
		Findings:           in.Findings,
		OverallStatus:      in.OverallStatus,
		Notes:              strings.TrimSpace(in.Notes),
		TestedAt:           testedAt,
		CreatedAt:          now,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return TestResult{}, err
	}

	if code.SponsorType != codes.SponsorSelf {
		notice := notify.CompletionNotice{
			AssessmentCodeID: code.ID,
			Code:             code.Code,
			SponsorID:        code.SponsorID,
			SponsorType:      string(code.SponsorType),
			CenterName:       center.Name,
			CompletedAt:      now,
		}
		if err := s.notifier.NotifyResultReady(ctx, notice); err != nil {
			// Non-fatal: the result stands, the flag stays false and the
			// sponsor can be re-notified out of band.
			s.log.Warn().Err(err).Str("code_id", code.ID).Msg("sponsor notification failed")
		} else {
			metrics.SponsorNotifications.Inc()
			if err := s.repo.MarkSponsorNotified(ctx, res.ID, now); err == nil {
				res.SponsorNotified = true
				res.SponsorNotifiedAt = &now
			}
		}
	}

	return res, nil
}

// GetForPatient returns a result to its owner, recording the read receipt on
// first view.
func (s *Service) GetForPatient(ctx context.Context, id, patientID string) (TestResult, error) {
	id = strings.TrimSpace(id)
	patientID = strings.TrimSpace(patientID)
	if id == "" || patientID == "" {
		return TestResult{}, ErrInvalidInput
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TestResult{}, ErrNotFound
	}
	if res.PatientID != patientID {
		return TestResult{}, ErrForbidden
	}

	if !res.Viewed {
		now := s.now()
		if err := s.repo.MarkViewed(ctx, res.ID, now); err == nil {
			res.Viewed = true
			res.ViewedAt = &now
		}
	}
	return res, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]TestResult, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListByCenter(ctx context.Context, centerID string) ([]TestResult, error) {
	centerID = strings.TrimSpace(centerID)
	if centerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByCenter(ctx, centerID)
}

func validFindingStatus(fs FindingStatus) bool {
	switch fs {
	case FindingNormal, FindingAbnormal, FindingBorderline:
		return true
	default:
		return false
	}
}

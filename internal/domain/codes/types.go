package codes

import "strings"

type Status string

const (
	StatusPending Status = "pending"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// SponsorType says who pays for the test. "self" means the patient funds it
// and nobody is notified on completion.
type SponsorType string

const (
	SponsorSelf     SponsorType = "self"
	SponsorEmployer SponsorType = "employer"
	SponsorNGO      SponsorType = "ngo"
	SponsorPartner  SponsorType = "partner"
	SponsorFamily   SponsorType = "family"
	SponsorOther    SponsorType = "other"
)

func parseSponsorType(s string) (SponsorType, bool) {
	switch SponsorType(strings.ToLower(strings.TrimSpace(s))) {
	case "", SponsorSelf:
		return SponsorSelf, true
	case SponsorEmployer:
		return SponsorEmployer, true
	case SponsorNGO:
		return SponsorNGO, true
	case SponsorPartner:
		return SponsorPartner, true
	case SponsorFamily:
		return SponsorFamily, true
	case SponsorOther:
		return SponsorOther, true
	default:
		return "", false
	}
}

// Reason explains a failed validation. These are data, not errors: the
// validate endpoint is polled interactively while a receptionist types.
type Reason string

const (
	ReasonNotFound    Reason = "not_found"
	ReasonAlreadyUsed Reason = "already_used"
	ReasonExpired     Reason = "expired"
)

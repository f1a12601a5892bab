package codes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"privescreen/internal/domain/wallets"
	"privescreen/internal/middleware"
	"privescreen/internal/platform/httpx"
	"privescreen/internal/platform/metrics"
	"privescreen/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/codes", func(cr chi.Router) {
		cr.Post("/generate", generateCodeHandler(svc))
		cr.Get("/validate/{code}", validateCodeHandler(svc))
		cr.Post("/use", redeemCodeHandler(svc))
	})
	r.Get("/me/codes", listMyCodesHandler(svc))
}

type generateRequest struct {
	TestID       string `json:"test_id"`
	SponsorID    string `json:"sponsor_id"`
	SponsorType  string `json:"sponsor_type"`
	ValidityDays int    `json:"validity_days"`
}

type redeemRequest struct {
	Code     string `json:"code"`
	CenterID string `json:"center_id"`
}

type codeResponse struct {
	ID                 string     `json:"id"`
	Code               string     `json:"code"`
	PatientID          string     `json:"patient_id"`
	TestStandardID     string     `json:"test_standard_id"`
	SponsorID          string     `json:"sponsor_id,omitempty"`
	SponsorType        string     `json:"sponsor_type"`
	Status             string     `json:"status"`
	ValidUntil         time.Time  `json:"valid_until"`
	UsedAt             *time.Time `json:"used_at,omitempty"`
	DiagnosticCenterID string     `json:"diagnostic_center_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type validationResponse struct {
	Valid          bool       `json:"valid"`
	Code           string     `json:"code"`
	PatientID      string     `json:"patient_id,omitempty"`
	TestStandardID string     `json:"test_standard_id,omitempty"`
	SponsorType    string     `json:"sponsor_type,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	Status         string     `json:"status,omitempty"`
	Message        string     `json:"message,omitempty"`
}

func generateCodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if claims.Role != auth.RolePatient {
			httpx.Error(w, http.StatusForbidden, "only patients can request codes")
			return
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		c, err := svc.Issue(r.Context(), claims.UserID, IssueInput{
			TestStandardID: req.TestID,
			SponsorID:      req.SponsorID,
			SponsorType:    req.SponsorType,
			ValidityDays:   req.ValidityDays,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidTestStandard):
				httpx.Error(w, http.StatusBadRequest, "This test is not available")
			case errors.Is(err, wallets.ErrInsufficientFunds):
				httpx.Error(w, http.StatusPaymentRequired, "Sponsor wallet balance is too low for this test")
			case errors.Is(err, ErrInvalidInput):
				httpx.Error(w, http.StatusBadRequest, "test_id is required and validity_days must be between 1 and 90")
			default:
				httpx.Error(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		metrics.CodesIssued.Inc()
		httpx.OK(w, http.StatusCreated, toCodeResponse(c))
	}
}

func validateCodeHandler(svc *Service) http.HandlerFunc {
	// Always 200 with a valid flag: this endpoint is polled while a code is
	// being typed, so invalid states are payloads rather than errors.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		raw := chi.URLParam(r, "code")
		v, err := svc.Validate(r.Context(), raw)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !v.Valid {
			metrics.CodeValidations.WithLabelValues(string(v.Reason)).Inc()
			httpx.OK(w, http.StatusOK, validationResponse{
				Valid:   false,
				Code:    NormalizeCode(raw),
				Message: reasonMessage(v.Reason),
			})
			return
		}

		metrics.CodeValidations.WithLabelValues("valid").Inc()
		httpx.OK(w, http.StatusOK, validationResponse{
			Valid:          true,
			Code:           v.Snapshot.Code,
			PatientID:      v.Snapshot.PatientID,
			TestStandardID: v.Snapshot.TestStandardID,
			SponsorType:    string(v.Snapshot.SponsorType),
			ValidUntil:     &v.Snapshot.ValidUntil,
			Status:         string(v.Snapshot.Status),
		})
	}
}

func redeemCodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if claims.Role != auth.RoleCenter && claims.Role != auth.RoleAdmin {
			httpx.Error(w, http.StatusForbidden, "only diagnostic centers can redeem codes")
			return
		}

		var req redeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		c, err := svc.Redeem(r.Context(), req.Code, req.CenterID)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				metrics.CodeRedemptions.WithLabelValues("not_found").Inc()
				httpx.Error(w, http.StatusNotFound, "This code is not valid or has expired")
			case errors.Is(err, ErrExpired):
				metrics.CodeRedemptions.WithLabelValues("expired").Inc()
				httpx.Error(w, http.StatusGone, "This code has expired")
			case errors.Is(err, ErrAlreadyRedeemed):
				metrics.CodeRedemptions.WithLabelValues("already_used").Inc()
				httpx.Error(w, http.StatusConflict, "This code has already been used")
			case errors.Is(err, ErrCenterNotFound):
				metrics.CodeRedemptions.WithLabelValues("center_not_found").Inc()
				httpx.Error(w, http.StatusNotFound, "Diagnostic center not found or not approved")
			case errors.Is(err, ErrInvalidInput):
				httpx.Error(w, http.StatusBadRequest, "code and center_id are required")
			default:
				httpx.Error(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		metrics.CodeRedemptions.WithLabelValues("ok").Inc()
		httpx.OK(w, http.StatusOK, toCodeResponse(c))
	}
}

func listMyCodesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := svc.ListByPatient(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]codeResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCodeResponse(c))
		}
		httpx.OK(w, http.StatusOK, out)
	}
}

func reasonMessage(r Reason) string {
	switch r {
	case ReasonAlreadyUsed:
		return "This code has already been used"
	case ReasonExpired:
		return "This code has expired"
	default:
		return "This code is not valid or has expired"
	}
}

func toCodeResponse(c AssessmentCode) codeResponse {
	sponsorID := c.SponsorID
	if c.SponsorType == SponsorSelf {
		sponsorID = ""
	}
	return codeResponse{
		ID:                 c.ID,
		Code:               c.Code,
		PatientID:          c.PatientID,
		TestStandardID:     c.TestStandardID,
		SponsorID:          sponsorID,
		SponsorType:        string(c.SponsorType),
		Status:             string(c.Status),
		ValidUntil:         c.ValidUntil,
		UsedAt:             c.UsedAt,
		DiagnosticCenterID: c.DiagnosticCenterID,
		CreatedAt:          c.CreatedAt,
	}
}

package results

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"privescreen/internal/domain/centers"
	"privescreen/internal/middleware"
	"privescreen/internal/platform/httpx"
	"privescreen/internal/platform/metrics"
	"privescreen/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service, centersSvc *centers.Service) {
	r.Post("/results/submit", submitResultHandler(svc, centersSvc))
	r.Get("/results/{resultID}", getResultHandler(svc))
	r.Get("/me/results", listMyResultsHandler(svc))
	r.Get("/centers/results", listCenterResultsHandler(svc, centersSvc))
}

type findingDTO struct {
	Parameter      string `json:"parameter"`
	Value          string `json:"value"`
	ReferenceRange string `json:"reference_range"`
	Status         string `json:"status"`
}

type submitRequest struct {
	AssessmentCodeID string       `json:"assessment_code_id"`
	TestData         []findingDTO `json:"test_data"`
	OverallStatus    string       `json:"overall_status"`
	Notes            string       `json:"notes"`
	TestedAt         string       `json:"tested_at"` // RFC3339, optional
}

type resultResponse struct {
	ID                 string       `json:"id"`
	AssessmentCodeID   string       `json:"assessment_code_id"`
	PatientID          string       `json:"patient_id"`
	DiagnosticCenterID string       `json:"diagnostic_center_id"`
	TestStandardID     string       `json:"test_standard_id"`
	Findings           []findingDTO `json:"results"`
	OverallStatus      string       `json:"overall_status"`
	Notes              string       `json:"notes,omitempty"`
	TestedAt           time.Time    `json:"tested_at"`
	Viewed             bool         `json:"viewed"`
	ViewedAt           *time.Time   `json:"viewed_at,omitempty"`
	SponsorNotified    bool         `json:"sponsor_notified"`
	SponsorNotifiedAt  *time.Time   `json:"sponsor_notified_at,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}

func submitResultHandler(svc *Service, centersSvc *centers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if claims.Role != auth.RoleCenter {
			httpx.Error(w, http.StatusForbidden, "only diagnostic centers can submit results")
			return
		}

		center, err := centersSvc.GetByOperator(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, http.StatusForbidden, "no diagnostic center registered for this account")
			return
		}
		if center.Status != centers.StatusApproved {
			httpx.Error(w, http.StatusForbidden, "diagnostic center is not approved")
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		var testedAt time.Time
		if strings.TrimSpace(req.TestedAt) != "" {
			t, err := time.Parse(time.RFC3339, req.TestedAt)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "tested_at must be RFC3339")
				return
			}
			testedAt = t
		}

		findings := make([]Finding, 0, len(req.TestData))
		for _, f := range req.TestData {
			findings = append(findings, Finding{
				Parameter:      f.Parameter,
				Value:          f.Value,
				ReferenceRange: f.ReferenceRange,
				Status:         FindingStatus(strings.ToLower(strings.TrimSpace(f.Status))),
			})
		}

		res, err := svc.Submit(r.Context(), center, SubmitInput{
			AssessmentCodeID: req.AssessmentCodeID,
			Findings:         findings,
			OverallStatus:    FindingStatus(strings.ToLower(strings.TrimSpace(req.OverallStatus))),
			Notes:            req.Notes,
			TestedAt:         testedAt,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrCodeNotRedeemed):
				metrics.ResultsSubmitted.WithLabelValues("not_redeemed").Inc()
				httpx.Error(w, http.StatusConflict, "This code has not been redeemed yet")
			case errors.Is(err, ErrDuplicateSubmission):
				metrics.ResultsSubmitted.WithLabelValues("duplicate").Inc()
				httpx.Error(w, http.StatusConflict, "A result has already been submitted for this code")
			case errors.Is(err, ErrForbidden):
				httpx.Error(w, http.StatusForbidden, "this code was redeemed at a different center")
			case errors.Is(err, ErrInvalidInput):
				httpx.Error(w, http.StatusBadRequest, "assessment_code_id, test_data and a valid overall_status are required")
			default:
				httpx.Error(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		metrics.ResultsSubmitted.WithLabelValues("ok").Inc()
		httpx.OK(w, http.StatusCreated, toResultResponse(res))
	}
}

func getResultHandler(svc *Service) http.HandlerFunc {
	// Patient-only; the first read flips the viewed receipt.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		res, err := svc.GetForPatient(r.Context(), chi.URLParam(r, "resultID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, ErrForbidden):
				httpx.Error(w, http.StatusForbidden, "forbidden")
			default:
				httpx.Error(w, http.StatusNotFound, "result not found")
			}
			return
		}

		httpx.OK(w, http.StatusOK, toResultResponse(res))
	}
}

func listMyResultsHandler(svc *Service) http.HandlerFunc {
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

		out := make([]resultResponse, 0, len(items))
		for _, res := range items {
			out = append(out, toResultResponse(res))
		}
		httpx.OK(w, http.StatusOK, out)
	}
}

func listCenterResultsHandler(svc *Service, centersSvc *centers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.Role != auth.RoleCenter {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		center, err := centersSvc.GetByOperator(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, http.StatusForbidden, "no diagnostic center registered for this account")
			return
		}

		items, err := svc.ListByCenter(r.Context(), center.ID)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]resultResponse, 0, len(items))
		for _, res := range items {
			out = append(out, toResultResponse(res))
		}
		httpx.OK(w, http.StatusOK, out)
	}
}

func toResultResponse(r TestResult) resultResponse {
	findings := make([]findingDTO, 0, len(r.Findings))
	for _, f := range r.Findings {
		findings = append(findings, findingDTO{
			Parameter:      f.Parameter,
			Value:          f.Value,
			ReferenceRange: f.ReferenceRange,
			Status:         string(f.Status),
		})
	}
	return resultResponse{
		ID:                 r.ID,
		AssessmentCodeID:   r.AssessmentCodeID,
		PatientID:          r.PatientID,
		DiagnosticCenterID: r.DiagnosticCenterID,
		TestStandardID:     r.TestStandardID,
		Findings:           findings,
		OverallStatus:      string(r.OverallStatus),
		Notes:              r.Notes,
		TestedAt:           r.TestedAt,
		Viewed:             r.Viewed,
		ViewedAt:           r.ViewedAt,
		SponsorNotified:    r.SponsorNotified,
		SponsorNotifiedAt:  r.SponsorNotifiedAt,
		CreatedAt:          r.CreatedAt,
	}
}

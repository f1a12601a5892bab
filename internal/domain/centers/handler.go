package centers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privescreen/internal/middleware"
	"privescreen/internal/platform/httpx"
	"privescreen/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/centers", func(cr chi.Router) {
		cr.Post("/", createCenterHandler(svc))
		cr.Get("/", listCentersHandler(svc))
		cr.Get("/{centerID}", getCenterHandler(svc))
		cr.Post("/{centerID}/approve", setStatusHandler(svc, StatusApproved))
		cr.Post("/{centerID}/suspend", setStatusHandler(svc, StatusSuspended))
	})
}

type createCenterRequest struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	OperatorUserID string `json:"operator_user_id"`
}

type centerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Status  string `json:"status"`
}

func createCenterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.Role != auth.RoleAdmin {
			httpx.Error(w, http.StatusForbidden, "admin access required")
			return
		}

		var req createCenterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		c, err := svc.Create(r.Context(), CreateInput{
			Name:           req.Name,
			Address:        req.Address,
			City:           req.City,
			State:          req.State,
			OperatorUserID: req.OperatorUserID,
		})
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "name and operator_user_id are required")
			return
		}

		httpx.OK(w, http.StatusCreated, toCenterResponse(c))
	}
}

func listCentersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]centerResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCenterResponse(c))
		}
		httpx.OK(w, http.StatusOK, out)
	}
}

func getCenterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "centerID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "diagnostic center not found")
			return
		}
		httpx.OK(w, http.StatusOK, toCenterResponse(c))
	}
}

func setStatusHandler(svc *Service, status Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.Role != auth.RoleAdmin {
			httpx.Error(w, http.StatusForbidden, "admin access required")
			return
		}

		var (
			c   DiagnosticCenter
			err error
		)
		if status == StatusApproved {
			c, err = svc.Approve(r.Context(), chi.URLParam(r, "centerID"))
		} else {
			c, err = svc.Suspend(r.Context(), chi.URLParam(r, "centerID"))
		}
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "diagnostic center not found")
			return
		}
		httpx.OK(w, http.StatusOK, toCenterResponse(c))
	}
}

func toCenterResponse(c DiagnosticCenter) centerResponse {
	return centerResponse{
		ID:      c.ID,
		Name:    c.Name,
		Address: c.Address,
		City:    c.City,
		State:   c.State,
		Status:  string(c.Status),
	}
}

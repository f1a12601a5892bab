package teststandards

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privescreen/internal/middleware"
	"privescreen/internal/platform/httpx"
	"privescreen/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/standards", func(sr chi.Router) {
		sr.Post("/", createStandardHandler(svc))
		sr.Get("/", listStandardsHandler(svc))
		sr.Get("/{standardID}", getStandardHandler(svc))
		sr.Post("/{standardID}/deactivate", deactivateStandardHandler(svc))
	})
}

type parameterSpecDTO struct {
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
}

type createStandardRequest struct {
	Name       string             `json:"name"`
	Category   string             `json:"category"`
	Parameters []parameterSpecDTO `json:"parameters"`
	PriceKobo  int64              `json:"price_kobo"`
}

type standardResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Category   string             `json:"category"`
	Parameters []parameterSpecDTO `json:"parameters"`
	PriceKobo  int64              `json:"price_kobo"`
	Active     bool               `json:"active"`
}

func createStandardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.Role != auth.RoleAdmin {
			httpx.Error(w, http.StatusForbidden, "admin access required")
			return
		}

		var req createStandardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		params := make([]ParameterSpec, 0, len(req.Parameters))
		for _, p := range req.Parameters {
			params = append(params, ParameterSpec{
				Name:           p.Name,
				Unit:           p.Unit,
				ReferenceRange: p.ReferenceRange,
			})
		}

		std, err := svc.Create(r.Context(), CreateInput{
			Name:       req.Name,
			Category:   req.Category,
			Parameters: params,
			PriceKobo:  req.PriceKobo,
		})
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "name, parameters and a non-negative price are required")
			return
		}

		httpx.OK(w, http.StatusCreated, toStandardResponse(std))
	}
}

func listStandardsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Non-admins only see purchasable standards.
		claims, _ := middleware.GetClaims(r.Context())
		onlyActive := claims.Role != auth.RoleAdmin

		items, err := svc.List(r.Context(), onlyActive)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]standardResponse, 0, len(items))
		for _, s := range items {
			out = append(out, toStandardResponse(s))
		}
		httpx.OK(w, http.StatusOK, out)
	}
}

func getStandardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		std, err := svc.GetByID(r.Context(), chi.URLParam(r, "standardID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "test standard not found")
			return
		}
		httpx.OK(w, http.StatusOK, toStandardResponse(std))
	}
}

func deactivateStandardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.Role != auth.RoleAdmin {
			httpx.Error(w, http.StatusForbidden, "admin access required")
			return
		}

		std, err := svc.Deactivate(r.Context(), chi.URLParam(r, "standardID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "test standard not found")
			return
		}
		httpx.OK(w, http.StatusOK, toStandardResponse(std))
	}
}

func toStandardResponse(s TestStandard) standardResponse {
	params := make([]parameterSpecDTO, 0, len(s.Parameters))
	for _, p := range s.Parameters {
		params = append(params, parameterSpecDTO{
			Name:           p.Name,
			Unit:           p.Unit,
			ReferenceRange: p.ReferenceRange,
		})
	}
	return standardResponse{
		ID:         s.ID,
		Name:       s.Name,
		Category:   string(s.Category),
		Parameters: params,
		PriceKobo:  s.PriceKobo,
		Active:     s.Active,
	}
}

package wallets

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"privescreen/internal/middleware"
	"privescreen/internal/platform/httpx"
	"privescreen/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/wallets/topup", topupHandler(svc))
	r.Get("/me/wallet", myWalletHandler(svc))
}

type topupRequest struct {
	AmountKobo int64  `json:"amount_kobo"`
	Ref        string `json:"ref"`
}

type entryResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	AmountKobo int64     `json:"amount_kobo"`
	Ref        string    `json:"ref"`
	Memo       string    `json:"memo,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type walletResponse struct {
	BalanceKobo int64           `json:"balance_kobo"`
	Entries     []entryResponse `json:"entries"`
}

func topupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if claims.Role != auth.RoleSponsor && claims.Role != auth.RolePatient {
			httpx.Error(w, http.StatusForbidden, "only sponsors and patients hold wallets")
			return
		}

		var req topupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		_, err := svc.Credit(r.Context(), claims.UserID, req.AmountKobo, req.Ref, "wallet top-up")
		switch err {
		case nil:
		case ErrDuplicateRef:
			// Retried top-up: not an error, the money is already booked.
		case ErrInvalidInput:
			httpx.Error(w, http.StatusBadRequest, "amount_kobo must be positive and ref is required")
			return
		default:
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		balance, err := svc.Balance(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		httpx.OKMessage(w, http.StatusOK, "wallet credited", map[string]int64{"balance_kobo": balance})
	}
}

func myWalletHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		entries, err := svc.Entries(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		var balance int64
		out := make([]entryResponse, 0, len(entries))
		for _, e := range entries {
			balance += e.signed()
			out = append(out, entryResponse{
				ID:         e.ID,
				Type:       string(e.Type),
				AmountKobo: e.AmountKobo,
				Ref:        e.Ref,
				Memo:       e.Memo,
				CreatedAt:  e.CreatedAt,
			})
		}

		httpx.OK(w, http.StatusOK, walletResponse{
			BalanceKobo: balance,
			Entries:     out,
		})
	}
}

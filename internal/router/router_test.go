package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	notifymem "privescreen/internal/adapters/notify/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *notifymem.Notifier) {
	t.Helper()
	recorder := notifymem.NewNotifier()
	h := NewRouter(Options{
		Notifier:        recorder,
		Logger:          zerolog.Nop(),
		MaxValidityDays: 90,
	})
	return h, recorder
}

func do(t *testing.T, h http.Handler, method, path, userID, role string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
		req.Header.Set("X-Debug-Role", role)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if len(w.Body.Bytes()) > 0 && w.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode envelope: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code, env
}

func dataString(t *testing.T, env envelope, key string) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	s, _ := m[key].(string)
	return s
}

// Full lifecycle: catalog + center setup, sponsor top-up, issuance,
// validation, redemption, result submission and the sponsor notice.
func TestRouter_SponsoredLifecycle(t *testing.T) {
	h, recorder := newTestRouter(t)

	// Admin seeds the catalog and the center network.
	code, env := do(t, h, http.MethodPost, "/standards/", "admin-1", "admin", map[string]any{
		"name":     "HIV 1/2 Ag/Ab Combo",
		"category": "hiv",
		"parameters": []map[string]string{
			{"name": "HIV 1/2 Ag/Ab", "reference_range": "non-reactive"},
		},
		"price_kobo": 500000,
	})
	if code != http.StatusCreated {
		t.Fatalf("create standard: status %d", code)
	}
	standardID := dataString(t, env, "id")

	code, env = do(t, h, http.MethodPost, "/centers/", "admin-1", "admin", map[string]any{
		"name":             "Lifecare Labs Yaba",
		"city":             "Lagos",
		"state":            "Lagos",
		"operator_user_id": "operator-1",
	})
	if code != http.StatusCreated {
		t.Fatalf("create center: status %d", code)
	}
	centerID := dataString(t, env, "id")

	if code, _ = do(t, h, http.MethodPost, "/centers/"+centerID+"/approve", "admin-1", "admin", nil); code != http.StatusOK {
		t.Fatalf("approve center: status %d", code)
	}

	// Sponsor funds its wallet.
	if code, _ = do(t, h, http.MethodPost, "/wallets/topup", "ngo-9", "sponsor", map[string]any{
		"amount_kobo": 1000000,
		"ref":         "paystack-tx-001",
	}); code != http.StatusOK {
		t.Fatalf("topup: status %d", code)
	}

	// Patient gets a sponsored code.
	code, env = do(t, h, http.MethodPost, "/codes/generate", "patient-1", "patient", map[string]any{
		"test_id":      standardID,
		"sponsor_id":   "ngo-9",
		"sponsor_type": "ngo",
	})
	if code != http.StatusCreated {
		t.Fatalf("generate code: status %d (%+v)", code, env.Error)
	}
	codeID := dataString(t, env, "id")
	codeValue := dataString(t, env, "code")
	if len(codeValue) != 12 {
		t.Fatalf("expected 12-char code, got %q", codeValue)
	}

	// The receptionist checks the code before collecting the sample.
	code, env = do(t, h, http.MethodGet, "/codes/validate/"+codeValue, "operator-1", "center", nil)
	if code != http.StatusOK {
		t.Fatalf("validate: status %d", code)
	}
	var v struct {
		Valid     bool   `json:"valid"`
		PatientID string `json:"patient_id"`
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode validation: %v", err)
	}
	if !v.Valid || v.PatientID != "patient-1" {
		t.Fatalf("expected valid code for patient-1, got %+v", v)
	}

	// Redeem once; the second attempt conflicts.
	if code, _ = do(t, h, http.MethodPost, "/codes/use", "operator-1", "center", map[string]any{
		"code":      codeValue,
		"center_id": centerID,
	}); code != http.StatusOK {
		t.Fatalf("redeem: status %d", code)
	}
	if code, _ = do(t, h, http.MethodPost, "/codes/use", "operator-1", "center", map[string]any{
		"code":      codeValue,
		"center_id": centerID,
	}); code != http.StatusConflict {
		t.Fatalf("second redeem: expected 409, got %d", code)
	}

	// The lab reports; the duplicate is rejected.
	submitBody := map[string]any{
		"assessment_code_id": codeID,
		"test_data": []map[string]string{
			{"parameter": "HIV 1/2 Ag/Ab", "value": "non-reactive", "status": "normal"},
		},
		"overall_status": "normal",
	}
	code, env = do(t, h, http.MethodPost, "/results/submit", "operator-1", "center", submitBody)
	if code != http.StatusCreated {
		t.Fatalf("submit result: status %d (%+v)", code, env.Error)
	}
	resultID := dataString(t, env, "id")

	if code, _ = do(t, h, http.MethodPost, "/results/submit", "operator-1", "center", submitBody); code != http.StatusConflict {
		t.Fatalf("duplicate submit: expected 409, got %d", code)
	}

	// The sponsor learned the test is done, and nothing more.
	notices := recorder.Notices()
	if len(notices) != 1 {
		t.Fatalf("expected 1 sponsor notice, got %d", len(notices))
	}
	if notices[0].SponsorID != "ngo-9" || notices[0].Code != codeValue {
		t.Fatalf("unexpected notice %+v", notices[0])
	}

	// The patient reads the result; the first read sets the receipt.
	code, env = do(t, h, http.MethodGet, "/results/"+resultID, "patient-1", "patient", nil)
	if code != http.StatusOK {
		t.Fatalf("get result: status %d", code)
	}
	var res struct {
		Viewed        bool   `json:"viewed"`
		OverallStatus string `json:"overall_status"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !res.Viewed || res.OverallStatus != "normal" {
		t.Fatalf("unexpected result payload %+v", res)
	}

	// Another patient cannot read it.
	if code, _ = do(t, h, http.MethodGet, "/results/"+resultID, "patient-2", "patient", nil); code != http.StatusForbidden {
		t.Fatalf("foreign result read: expected 403, got %d", code)
	}

	// The issuance debited the sponsor wallet.
	code, env = do(t, h, http.MethodGet, "/me/wallet", "ngo-9", "sponsor", nil)
	if code != http.StatusOK {
		t.Fatalf("get wallet: status %d", code)
	}
	var wallet struct {
		BalanceKobo int64 `json:"balance_kobo"`
	}
	if err := json.Unmarshal(env.Data, &wallet); err != nil {
		t.Fatalf("decode wallet: %v", err)
	}
	if wallet.BalanceKobo != 500000 {
		t.Fatalf("expected 500000 left after issuance, got %d", wallet.BalanceKobo)
	}
}

func TestRouter_InsufficientSponsorFunds(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := do(t, h, http.MethodPost, "/standards/", "admin-1", "admin", map[string]any{
		"name":       "Hepatitis B Panel",
		"parameters": []map[string]string{{"name": "HBsAg"}},
		"price_kobo": 300000,
	})
	if code != http.StatusCreated {
		t.Fatalf("create standard: status %d", code)
	}
	standardID := dataString(t, env, "id")

	// The employer never topped up.
	code, _ = do(t, h, http.MethodPost, "/codes/generate", "patient-1", "patient", map[string]any{
		"test_id":      standardID,
		"sponsor_id":   "emp-1",
		"sponsor_type": "employer",
	})
	if code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", code)
	}
}

func TestRouter_SelfFundedSkipsWalletAndNotice(t *testing.T) {
	h, recorder := newTestRouter(t)

	code, env := do(t, h, http.MethodPost, "/standards/", "admin-1", "admin", map[string]any{
		"name":       "General Wellness",
		"parameters": []map[string]string{{"name": "FBC"}},
		"price_kobo": 200000,
	})
	if code != http.StatusCreated {
		t.Fatalf("create standard: status %d", code)
	}
	standardID := dataString(t, env, "id")

	// No wallet anywhere, yet self-funded issuance succeeds.
	code, env = do(t, h, http.MethodPost, "/codes/generate", "patient-1", "patient", map[string]any{
		"test_id": standardID,
	})
	if code != http.StatusCreated {
		t.Fatalf("self-funded generate: status %d (%+v)", code, env.Error)
	}
	if got := dataString(t, env, "sponsor_id"); got != "" {
		t.Fatalf("self-funded response must not expose a sponsor id, got %q", got)
	}
	if len(recorder.Notices()) != 0 {
		t.Fatalf("nothing to notify on issuance")
	}
}

func TestRouter_AuthAndRoleGates(t *testing.T) {
	h, _ := newTestRouter(t)

	// No session at all.
	if code, _ := do(t, h, http.MethodGet, "/me/codes", "", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", code)
	}

	// Wrong roles.
	if code, _ := do(t, h, http.MethodPost, "/codes/generate", "operator-1", "center", map[string]any{"test_id": "x"}); code != http.StatusForbidden {
		t.Fatalf("center generating codes: expected 403, got %d", code)
	}
	if code, _ := do(t, h, http.MethodPost, "/codes/use", "patient-1", "patient", map[string]any{"code": "x", "center_id": "y"}); code != http.StatusForbidden {
		t.Fatalf("patient redeeming: expected 403, got %d", code)
	}
	if code, _ := do(t, h, http.MethodPost, "/standards/", "patient-1", "patient", map[string]any{"name": "x"}); code != http.StatusForbidden {
		t.Fatalf("patient creating standards: expected 403, got %d", code)
	}
	if code, _ := do(t, h, http.MethodPost, "/results/submit", "patient-1", "patient", map[string]any{}); code != http.StatusForbidden {
		t.Fatalf("patient submitting results: expected 403, got %d", code)
	}
	if code, _ := do(t, h, http.MethodPost, "/wallets/topup", "operator-1", "center", map[string]any{"amount_kobo": 1000, "ref": "x"}); code != http.StatusForbidden {
		t.Fatalf("center topping up a wallet: expected 403, got %d", code)
	}
}

func TestRouter_ValidateUnknownCodeIs200(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := do(t, h, http.MethodGet, "/codes/validate/AAAAAAAAAAAA", "operator-1", "center", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200 for unknown code, got %d", code)
	}
	var v struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode validation: %v", err)
	}
	if v.Valid || v.Message == "" {
		t.Fatalf("expected invalid with a user-facing message, got %+v", v)
	}
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health: status %d", w.Code)
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"privescreen/internal/ports/auth"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (v stubVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v.err != nil {
		return auth.Claims{}, v.err
	}
	return v.claims, nil
}

func capture(claims *auth.Claims, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*claims, *ok = GetClaims(r.Context())
	})
}

func TestAuthContext_DevHeaders(t *testing.T) {
	var (
		claims auth.Claims
		ok     bool
	)
	h := AuthContext(nil)(capture(&claims, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "patient-1")
	req.Header.Set("X-Debug-Role", "center")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !ok || claims.UserID != "patient-1" || claims.Role != auth.RoleCenter {
		t.Fatalf("expected injected session, got %+v ok=%v", claims, ok)
	}

	// Role defaults to patient.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "someone")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if claims.Role != auth.RolePatient {
		t.Fatalf("expected default patient role, got %s", claims.Role)
	}
}

func TestAuthContext_NoSessionPassesThrough(t *testing.T) {
	var (
		claims auth.Claims
		ok     bool
	)
	h := AuthContext(nil)(capture(&claims, &ok))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if ok {
		t.Fatalf("expected no claims without headers, got %+v", claims)
	}
}

func TestAuthContext_BearerToken(t *testing.T) {
	var (
		claims auth.Claims
		ok     bool
	)
	verifier := stubVerifier{claims: auth.Claims{UserID: "u-1", Role: auth.RoleSponsor}}
	h := AuthContext(verifier)(capture(&claims, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !ok || claims.UserID != "u-1" || claims.Role != auth.RoleSponsor {
		t.Fatalf("expected verified claims, got %+v ok=%v", claims, ok)
	}

	// Debug headers are ignored once a verifier is configured.
	claims, ok = auth.Claims{}, false
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "intruder")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Fatalf("debug headers must not work in verified mode")
	}
}

func TestAuthContext_InvalidTokenPassesThrough(t *testing.T) {
	var (
		claims auth.Claims
		ok     bool
	)
	verifier := stubVerifier{err: errors.New("bad token")}
	h := AuthContext(verifier)(capture(&claims, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired.jwt")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Fatalf("invalid token must not attach claims")
	}
}

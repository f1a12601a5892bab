package jwtverifier

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"privescreen/internal/ports/auth"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrTokenInvalid = errors.New("token is invalid")
)

type Config struct {
	Secret   string
	Issuer   string
	Audience string
}

// Verifier implements auth.AuthVerifier for HS256 tokens minted by the
// PriveScreen identity service. Issuer and audience are pinned.
type Verifier struct {
	cfg Config
}

func New(cfg Config) *Verifier {
	return &Verifier{cfg: cfg}
}

type sessionClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(v.cfg.Secret), nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	if v.cfg.Issuer != "" && claims.Issuer != v.cfg.Issuer {
		return auth.Claims{}, ErrTokenInvalid
	}
	if v.cfg.Audience != "" && !hasAudience(claims.Audience, v.cfg.Audience) {
		return auth.Claims{}, ErrTokenInvalid
	}

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		return auth.Claims{}, ErrTokenInvalid
	}

	return auth.Claims{
		UserID: userID,
		Email:  claims.Email,
		Role:   auth.Role(claims.Role),
	}, nil
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

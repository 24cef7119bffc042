package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "anchorid/pkg/domain-errors"
	"anchorid/pkg/platform/httputil"
	"anchorid/pkg/requestcontext"
)

// TokenValidator checks a bearer token and returns the caller identity.
type TokenValidator interface {
	ValidateToken(token string) (subject string, err error)
}

// RequireAuth gates routes behind a bearer token when a validator is
// configured. A nil validator disables the gate, matching deployments where
// the service sits behind an authenticating proxy.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				httputil.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "bearer token required"))
				return
			}
			if _, err := validator.ValidateToken(token); err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				httputil.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HMACValidator validates HS256 tokens signed with a shared key.
type HMACValidator struct {
	key []byte
}

// NewHMACValidator returns nil for an empty key so callers can pass the
// result straight to RequireAuth.
func NewHMACValidator(key string) *HMACValidator {
	if key == "" {
		return nil
	}
	return &HMACValidator{key: []byte(key)}
}

func (v *HMACValidator) ValidateToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}
	return subject, nil
}

package middleware

import (
	"net/http"
	"time"

	"anchorid/pkg/requestcontext"
)

// RequestTime freezes a single timestamp per request so every expiry and
// audit computation inside one handler invocation agrees on "now".
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), time.Now().UTC())))
	})
}

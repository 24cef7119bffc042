package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"anchorid/pkg/requestcontext"
)

// RequestID assigns every request a unique id, honoring an inbound
// X-Request-Id header so ids survive proxy hops. The id is echoed back on the
// response and quoted in error envelopes.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}

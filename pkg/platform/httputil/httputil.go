// Package httputil centralizes JSON response writing and request decoding so
// handlers stay thin and every error leaves the service in the same envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	dErrors "anchorid/pkg/domain-errors"
	"anchorid/pkg/requestcontext"
)

// ErrorBody is the wire shape of every non-2xx response.
type ErrorBody struct {
	Error ErrorEnvelope `json:"error"`
}

// ErrorEnvelope carries the coded error, its path-addressed details, and the
// trace id a client should quote when reporting the failure.
type ErrorEnvelope struct {
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Details   []dErrors.Detail `json:"details,omitempty"`
	TraceID   string           `json:"traceId,omitempty"`
	Retryable bool             `json:"retryable"`
}

// Validatable is implemented by request DTOs that validate and parse
// themselves after JSON decoding.
type Validatable interface {
	Validate() error
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the error envelope. Internal error messages
// are reduced to a generic text; everything else is assumed client-safe.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		domainErr = dErrors.New(dErrors.CodeInternal, "internal error")
	}

	message := domainErr.Message
	if domainErr.Code == dErrors.CodeInternal {
		message = "an internal error occurred"
	}

	WriteJSON(w, dErrors.HTTPStatus(domainErr.Code), ErrorBody{Error: ErrorEnvelope{
		Code:      string(domainErr.Code),
		Message:   message,
		Details:   domainErr.Details,
		TraceID:   traceID(r),
		Retryable: domainErr.Retryable,
	}})
}

// traceID prefers the recording span's trace id and falls back to the
// middleware-assigned request id.
func traceID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return requestcontext.RequestID(r.Context())
}

// DecodeAndPrepare decodes the request body into T, runs its Validate hook,
// and writes the error envelope on failure. Returns (nil, false) once the
// response has been written.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (PT, bool) {
	req := PT(new(T))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(req); err != nil {
		logger.WarnContext(r.Context(), "request decode failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return nil, false
	}

	if err := req.Validate(); err != nil {
		WriteError(w, r, err)
		return nil, false
	}
	return req, true
}

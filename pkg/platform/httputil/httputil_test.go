package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "anchorid/pkg/domain-errors"
	"anchorid/pkg/requestcontext"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits server detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		WriteError(w, r, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body ErrorBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Error.Code != string(dErrors.CodeInternal) {
			t.Fatalf("expected code %s, got %q", dErrors.CodeInternal, body.Error.Code)
		}
		if body.Error.Message == "db failed" {
			t.Fatalf("internal error message must not reach the client")
		}
		if body.Error.Retryable {
			t.Fatalf("internal errors are not retryable")
		}
	})

	t.Run("validation error keeps details and message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		err := dErrors.New(dErrors.CodeValidation, "the request is invalid").WithDetails(dErrors.Detail{
			Code:    "COUNTRY_CODE_INVALID",
			Path:    "requestedClaims[0].statements[0].set[0]",
			Message: "not an ISO 3166-1 alpha-2 code",
		})
		WriteError(w, r, err)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body ErrorBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Error.Message != "the request is invalid" {
			t.Fatalf("expected client-safe message, got %q", body.Error.Message)
		}
		if len(body.Error.Details) != 1 || body.Error.Details[0].Code != "COUNTRY_CODE_INVALID" {
			t.Fatalf("expected one COUNTRY_CODE_INVALID detail, got %+v", body.Error.Details)
		}
	})

	t.Run("non-domain error becomes internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		WriteError(w, r, http.ErrBodyNotAllowed)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})

	t.Run("trace id falls back to request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r = r.WithContext(requestcontext.WithRequestID(r.Context(), "req-123"))
		WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "bad input"))

		var body ErrorBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Error.TraceID != "req-123" {
			t.Fatalf("expected trace id req-123, got %q", body.Error.TraceID)
		}
	})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"anchorid/internal/verification"
	"anchorid/pkg/platform/httputil"
	"anchorid/pkg/requestcontext"
)

// Service defines the interface for the verification workflows.
type Service interface {
	CreateRequest(ctx context.Context, input verification.CreateRequestInput) (*verification.VerificationRequest, error)
	VerifyPresentation(ctx context.Context, input verification.VerifyInput) (*verification.VerifyOutput, error)
}

// Handler wires the verifiable-presentation endpoints to the workflow.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs the handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verifiable-presentations/create-verification-request", h.HandleCreateRequest)
	r.Post("/verifiable-presentations/verify", h.HandleVerify)
}

// HandleCreateRequest handles POST /verifiable-presentations/create-verification-request.
func (h *Handler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	body, ok := httputil.DecodeAndPrepare[CreateRequestBody](w, r, h.logger)
	if !ok {
		return
	}

	request, err := h.service.CreateRequest(ctx, body.Input())
	if err != nil {
		h.logger.WarnContext(ctx, "create verification request failed",
			"request_id", requestID,
			"connection_id", body.ConnectionID,
			"error", err,
		)
		httputil.WriteError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "verification request created",
		"request_id", requestID,
		"context_id", request.Context.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, request)
}

// HandleVerify handles POST /verifiable-presentations/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	body, ok := httputil.DecodeAndPrepare[VerifyBody](w, r, h.logger)
	if !ok {
		return
	}

	output, err := h.service.VerifyPresentation(ctx, body.Input())
	if err != nil {
		h.logger.WarnContext(ctx, "verify presentation failed",
			"request_id", requestID,
			"audit_record_id", body.AuditRecordID,
			"error", err,
		)
		httputil.WriteError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "presentation processed",
		"request_id", requestID,
		"audit_record_id", body.AuditRecordID,
		"result", output.Result,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromVerifyOutput(output))
}

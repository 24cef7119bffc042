// Package verification orchestrates the two anchored use cases: creating a
// verification request and verifying a presentation against it. It composes
// the statement validator, the nonce sequencer, and the opaque chain/proof
// collaborators; HTTP concerns stay in the handler subpackage.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"anchorid/internal/anchor"
	"anchorid/internal/audit"
	"anchorid/internal/chain"
	"anchorid/internal/sequencer"
	"anchorid/internal/statement"
	"anchorid/internal/verification/metrics"
	dErrors "anchorid/pkg/domain-errors"
	"anchorid/pkg/platform/sentinel"
	"anchorid/pkg/requestcontext"
)

// anchorRecord is the off-chain record whose digest a create-request anchors.
type anchorRecord struct {
	Context RequestContext           `cbor:"context"`
	Claims  []statement.SubjectClaim `cbor:"claims"`
}

// Service implements the anchored verification workflows.
type Service struct {
	node     chain.Client
	verifier ProofVerifier
	codec    *anchor.Codec
	seq      *sequencer.Sequencer
	store    Store
	audit    *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	signer   string
	txExpiry time.Duration
}

// NewService wires the workflow. All collaborators are required.
func NewService(
	node chain.Client,
	verifier ProofVerifier,
	codec *anchor.Codec,
	seq *sequencer.Sequencer,
	store Store,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	signer string,
) (*Service, error) {
	switch {
	case node == nil:
		return nil, errors.New("chain client is required")
	case verifier == nil:
		return nil, errors.New("proof verifier is required")
	case codec == nil:
		return nil, errors.New("anchor codec is required")
	case seq == nil:
		return nil, errors.New("nonce sequencer is required")
	case store == nil:
		return nil, errors.New("verification store is required")
	case auditPub == nil:
		return nil, errors.New("audit publisher is required")
	case m == nil:
		return nil, errors.New("metrics are required")
	case logger == nil:
		return nil, errors.New("logger is required")
	}
	return &Service{
		node:     node,
		verifier: verifier,
		codec:    codec,
		seq:      seq,
		store:    store,
		audit:    auditPub,
		metrics:  m,
		logger:   logger,
		signer:   signer,
		txExpiry: 10 * time.Minute,
	}, nil
}

// CreateRequest validates the requested claims, anchors the request context
// on-chain, and returns the verification request without waiting for
// finalization.
func (s *Service) CreateRequest(ctx context.Context, input CreateRequestInput) (*VerificationRequest, error) {
	if details := statement.Validate(input.Claims); len(details) > 0 {
		s.metrics.ValidationFailures.Inc()
		return nil, dErrors.New(dErrors.CodeValidation, "the request contains invalid claim statements").
			WithDetails(details...)
	}

	block, err := s.node.ConsensusBlockInfo(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "chain read failed", err)
	}

	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "challenge generation failed", err)
	}

	requestContext := RequestContext{
		ID:             uuid.NewString(),
		ConnectionID:   input.ConnectionID,
		ResourceID:     input.ResourceID,
		ContextString:  input.ContextString,
		Nonce:          challenge,
		BlockHashLabel: block.Hash,
		CreatedAt:      requestcontext.Now(ctx).UTC(),
	}

	registered, err := s.encodeAnchor(anchorRecord{Context: requestContext, Claims: input.Claims}, input.PublicInfo)
	if err != nil {
		return nil, err
	}

	txHash, err := s.submitAnchor(ctx, registered)
	if err != nil {
		s.emit(ctx, audit.EventAnchorFailed, func(e *audit.Event) {
			e.ContextID = requestContext.ID
			e.Detail = err.Error()
		})
		return nil, err
	}

	request := VerificationRequest{
		Context:               requestContext,
		SubjectClaims:         input.Claims,
		AnchorTransactionHash: txHash,
	}
	if err := s.store.SaveRequest(ctx, request); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist verification request", err)
	}

	s.metrics.RequestsCreated.Inc()
	s.emit(ctx, audit.EventRequestCreated, func(e *audit.Event) {
		e.ContextID = requestContext.ID
		e.TxHash = string(txHash)
	})
	s.logger.InfoContext(ctx, "verification request created",
		"request_id", requestcontext.RequestID(ctx),
		"context_id", requestContext.ID,
		"anchor_tx", txHash,
		"claims", len(input.Claims),
	)
	return &request, nil
}

// VerifyPresentation checks a presentation against its anchored request. A
// failed proof is a normal outcome; only verified outcomes submit an audit
// anchor.
func (s *Service) VerifyPresentation(ctx context.Context, input VerifyInput) (*VerifyOutput, error) {
	var (
		requestAnchor chain.AnchorData
		material      chain.CredentialMaterial
		params        chain.CryptographicParameters
	)

	// The reads are side-effect-free and share no state, so they fan out.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		requestAnchor, err = s.node.LookupAnchor(gctx, input.Request.AnchorTransactionHash)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(dErrors.CodeNotFound, "anchor transaction not found on chain", err)
		}
		if err != nil {
			return dErrors.Wrap(dErrors.CodeUnavailable, "anchor lookup failed", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		material, err = s.node.CredentialMaterial(gctx, input.Presentation.CredentialID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(dErrors.CodeNotFound, "credential not found on chain", err)
		}
		if err != nil {
			return dErrors.Wrap(dErrors.CodeUnavailable, "credential lookup failed", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		params, err = s.node.CryptographicParameters(gctx)
		if err != nil {
			return dErrors.Wrap(dErrors.CodeUnavailable, "cryptographic parameters lookup failed", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Pure verification, deliberately outside the sequencer's critical
	// section.
	outcome := s.verifier.Verify(input.Presentation, requestAnchor, material, params, input.Request.Context)

	result := ResultFailed
	if outcome.Verified {
		result = ResultVerified
	}
	record := AuditRecord{
		AuditRecordID: input.AuditRecordID,
		Request:       input.Request,
		Presentation:  input.Presentation,
		Result:        result,
		Reason:        outcome.Reason,
		VerifiedAt:    requestcontext.Now(ctx).UTC(),
	}

	// Persist before anchoring so a duplicate audit record id fails the call
	// without spending a transaction.
	if err := s.store.SaveAuditRecord(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(dErrors.CodeConflict,
				fmt.Sprintf("audit record %s already exists", input.AuditRecordID), err)
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist audit record", err)
	}

	output := &VerifyOutput{Result: result, Reason: outcome.Reason, AuditRecord: record}

	if outcome.Verified {
		registered, err := s.encodeAnchor(record, input.PublicInfo)
		if err != nil {
			return nil, err
		}
		txHash, err := s.submitAnchor(ctx, registered)
		if err != nil {
			s.emit(ctx, audit.EventAnchorFailed, func(e *audit.Event) {
				e.ContextID = input.Request.Context.ID
				e.Detail = err.Error()
			})
			return nil, err
		}
		output.AnchorTransactionHash = &txHash
		s.emit(ctx, audit.EventAnchorSubmitted, func(e *audit.Event) {
			e.ContextID = input.Request.Context.ID
			e.TxHash = string(txHash)
		})
	}

	s.metrics.VerificationResults.WithLabelValues(string(result)).Inc()
	s.emit(ctx, audit.EventPresentationResult, func(e *audit.Event) {
		e.ContextID = input.Request.Context.ID
		e.Result = string(result)
		e.Detail = outcome.Reason
	})
	s.logger.InfoContext(ctx, "presentation verified",
		"request_id", requestcontext.RequestID(ctx),
		"context_id", input.Request.Context.ID,
		"audit_record_id", record.AuditRecordID,
		"result", result,
	)
	return output, nil
}

// encodeAnchor turns a record into bounded registered data, classifying an
// oversized envelope as a client error since public info drives the size.
func (s *Service) encodeAnchor(record any, publicInfo []byte) (chain.RegisteredData, error) {
	encoded, err := s.codec.Encode(record)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "anchor encoding failed", err)
	}
	registered, err := s.codec.ToRegisteredData(encoded, publicInfo)
	if errors.Is(err, anchor.ErrTooLarge) {
		return nil, dErrors.Wrap(dErrors.CodeTooLarge, "public info exceeds the on-chain size bound", err)
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "anchor encoding failed", err)
	}
	return registered, nil
}

// submitAnchor submits registered data through the sequencer with the
// bounded conflict-retry protocol: one attempt, and on a sequence-number
// mismatch one refresh plus one retry. A second mismatch is fatal, leaving
// the counter at its refreshed value for the next caller. An explicit loop
// keeps the bound auditable.
func (s *Service) submitAnchor(ctx context.Context, data chain.RegisteredData) (chain.TransactionHash, error) {
	start := time.Now()
	defer func() {
		s.metrics.AnchorSubmitSeconds.Observe(time.Since(start).Seconds())
	}()

	submit := func(nonce chain.Nonce) (chain.TransactionHash, error) {
		return s.node.SubmitRegisteredData(ctx, chain.Transaction{
			Signer: s.signer,
			Sender: s.seq.Account(),
			Nonce:  nonce,
			Expiry: requestcontext.Now(ctx).Add(s.txExpiry),
			Data:   data,
		})
	}

	const maxAttempts = 2
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		txHash, err := s.seq.WithNonce(ctx, submit)
		if err == nil {
			return txHash, nil
		}
		lastErr = err
		if !chain.IsSequenceMismatch(err) {
			return "", dErrors.Wrap(dErrors.CodeUnavailable, "anchor submission failed", err)
		}
		s.metrics.SequenceConflicts.Inc()
		if attempt == maxAttempts {
			break
		}
		refreshed, err := s.seq.Refresh(ctx)
		if err != nil {
			return "", dErrors.Wrap(dErrors.CodeUnavailable, "sequence number refresh failed", err)
		}
		s.logger.WarnContext(ctx, "sequence number conflict, retrying once",
			"request_id", requestcontext.RequestID(ctx),
			"refreshed_nonce", refreshed,
		)
	}
	return "", dErrors.Wrap(dErrors.CodeInternal, "sequence number conflict persisted after refresh", lastErr)
}

func (s *Service) emit(ctx context.Context, kind audit.Kind, fill func(*audit.Event)) {
	event := audit.NewEvent(kind, requestcontext.Now(ctx).UTC())
	event.RequestID = requestcontext.RequestID(ctx)
	fill(&event)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"kind", kind,
			"error", err,
		)
	}
}

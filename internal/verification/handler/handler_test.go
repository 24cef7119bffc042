package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"anchorid/internal/anchor"
	"anchorid/internal/audit"
	"anchorid/internal/chain"
	"anchorid/internal/sequencer"
	"anchorid/internal/verification"
	"anchorid/internal/verification/handler"
	"anchorid/internal/verification/metrics"
	"anchorid/internal/verification/mocks"
	"anchorid/internal/verification/store"
	"anchorid/pkg/platform/httputil"
)

type fixture struct {
	router   chi.Router
	node     *chain.MemoryNode
	verifier *mocks.MockProofVerifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	node := chain.NewMemoryNode()
	verifier := mocks.NewMockProofVerifier(gomock.NewController(t))
	codec, err := anchor.NewCodec(256)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	service, err := verification.NewService(
		node,
		verifier,
		codec,
		sequencer.New(node, "signer-account", 0),
		store.NewMemory(),
		audit.NewPublisher(audit.NewMemorySink(), logger),
		metrics.NewWith(prometheus.NewRegistry()),
		logger,
		"signer-key-0",
	)
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.New(service, logger).Register(router)
	return &fixture{router: router, node: node, verifier: verifier}
}

func (f *fixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	f.router.ServeHTTP(w, r)
	return w
}

const createPath = "/verifiable-presentations/create-verification-request"

func validCreateBody() map[string]any {
	return map[string]any{
		"connectionId": "conn-1",
		"resourceId":   "res-1",
		"requestedClaims": []map[string]any{{
			"credentialId": "cred-1",
			"statements": []map[string]any{
				{"type": "RevealAttribute", "attributeTag": 0},
				{"type": "AttributeInRange", "attributeTag": 3, "lower": "19000101", "upper": "20071231"},
			},
		}},
	}
}

func TestHandleCreateRequest(t *testing.T) {
	t.Run("returns the anchored verification request", func(t *testing.T) {
		f := newFixture(t)
		w := f.post(t, createPath, validCreateBody())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response verification.VerificationRequest
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.NotEmpty(t, response.Context.ID)
		assert.NotEmpty(t, response.AnchorTransactionHash)
		assert.Len(t, f.node.SubmittedTransactions(), 1)
	})

	t.Run("missing connection id", func(t *testing.T) {
		f := newFixture(t)
		body := validCreateBody()
		body["connectionId"] = ""
		w := f.post(t, createPath, body)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid statements return every violation", func(t *testing.T) {
		f := newFixture(t)
		body := validCreateBody()
		body["requestedClaims"] = []map[string]any{{
			"credentialId": "cred-1",
			"statements": []map[string]any{
				{"type": "AttributeInRange", "attributeTag": 3, "lower": "19900101", "upper": "19890101"},
				{"type": "AttributeInSet", "attributeTag": 4, "set": []string{"UK"}},
			},
		}}

		w := f.post(t, createPath, body)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var envelope httputil.ErrorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
		assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
		require.Len(t, envelope.Error.Details, 2)
		assert.Equal(t, "ATTRIBUTE_IN_RANGE_STATEMENT_BOUNDS_INVALID", envelope.Error.Details[0].Code)
		assert.Equal(t, "COUNTRY_CODE_INVALID", envelope.Error.Details[1].Code)
		assert.False(t, envelope.Error.Retryable)

		assert.Empty(t, f.node.SubmittedTransactions(), "invalid requests must not touch the chain")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		f := newFixture(t)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, createPath, bytes.NewReader([]byte("{not json")))
		f.router.ServeHTTP(w, r)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

const verifyPath = "/verifiable-presentations/verify"

func (f *fixture) createdRequest(t *testing.T) verification.VerificationRequest {
	t.Helper()
	w := f.post(t, createPath, validCreateBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var request verification.VerificationRequest
	require.NoError(t, json.NewDecoder(w.Body).Decode(&request))

	f.node.StubCredential(chain.CredentialMaterial{CredentialID: "cred-1", Commitments: []byte{0xAA}})
	return request
}

func verifyBody(request verification.VerificationRequest, auditID string) map[string]any {
	return map[string]any{
		"auditRecordId":       auditID,
		"presentation":        map[string]any{"credentialId": "cred-1", "proof": []byte{0x01}},
		"verificationRequest": request,
	}
}

func TestHandleVerify(t *testing.T) {
	t.Run("verified presentation returns audit anchor hash", func(t *testing.T) {
		f := newFixture(t)
		request := f.createdRequest(t)

		f.verifier.EXPECT().
			Verify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(verification.Outcome{Verified: true})

		w := f.post(t, verifyPath, verifyBody(request, "audit-1"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response handler.VerifyResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Verified", response.Result)
		require.NotNil(t, response.AnchorTransactionHash)
		assert.Equal(t, "audit-1", response.VerificationAudit.AuditRecordID)
	})

	t.Run("failed proof is a 200 with no anchor", func(t *testing.T) {
		f := newFixture(t)
		request := f.createdRequest(t)

		f.verifier.EXPECT().
			Verify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(verification.Outcome{Verified: false, Reason: "challenge mismatch"})

		before := len(f.node.SubmittedTransactions())
		w := f.post(t, verifyPath, verifyBody(request, "audit-2"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response handler.VerifyResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Failed", response.Result)
		assert.Equal(t, "challenge mismatch", response.Reason)
		assert.Nil(t, response.AnchorTransactionHash)

		assert.Len(t, f.node.SubmittedTransactions(), before, "failed proofs must not submit anchors")
	})

	t.Run("unknown anchor is a 404", func(t *testing.T) {
		f := newFixture(t)
		request := f.createdRequest(t)
		request.AnchorTransactionHash = "ffffffffffffffff"

		w := f.post(t, verifyPath, verifyBody(request, "audit-3"))
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	t.Run("missing audit record id", func(t *testing.T) {
		f := newFixture(t)
		request := f.createdRequest(t)

		w := f.post(t, verifyPath, verifyBody(request, ""))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleCreateRequest_ManyStatements(t *testing.T) {
	f := newFixture(t)
	body := validCreateBody()

	statements := make([]map[string]any, 0, 20)
	for i := 0; i < 20; i++ {
		statements = append(statements, map[string]any{
			"type": "AttributeInSet", "attributeTag": 4, "set": []string{"UK"},
		})
	}
	body["requestedClaims"] = []map[string]any{{"credentialId": "cred-1", "statements": statements}}

	w := f.post(t, createPath, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope httputil.ErrorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	require.Len(t, envelope.Error.Details, 20, "validation must not short-circuit")
	for i, detail := range envelope.Error.Details {
		assert.Equal(t, "COUNTRY_CODE_INVALID", detail.Code)
		assert.Equal(t, fmt.Sprintf("requestedClaims[0].statements[%d].set[0]", i), detail.Path)
	}
}

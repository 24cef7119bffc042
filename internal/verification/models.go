package verification

import (
	"time"

	"anchorid/internal/chain"
	"anchorid/internal/statement"
)

// RequestContext is the unfilled context a holder produces a presentation
// against. Nonce is the random challenge bound into the proof, unrelated to
// account sequence numbers. BlockHashLabel pins the chain view the request
// was created under.
type RequestContext struct {
	ID             string          `json:"id" cbor:"id"`
	ConnectionID   string          `json:"connectionId" cbor:"conn"`
	ResourceID     string          `json:"resourceId" cbor:"res"`
	ContextString  string          `json:"contextString,omitempty" cbor:"ctx,omitempty"`
	Nonce          []byte          `json:"nonce" cbor:"nonce"`
	BlockHashLabel chain.BlockHash `json:"blockHashLabel" cbor:"block"`
	CreatedAt      time.Time       `json:"createdAt" cbor:"at"`
}

// VerificationRequest is produced once by create-request and presented back
// by the relying party on verify. Single use is not enforced; nothing marks
// a request consumed.
type VerificationRequest struct {
	Context               RequestContext           `json:"context" cbor:"context"`
	SubjectClaims         []statement.SubjectClaim `json:"subjectClaims" cbor:"claims"`
	AnchorTransactionHash chain.TransactionHash    `json:"anchorTransactionHash" cbor:"anchor"`
}

// Presentation is the holder's proof package. Its internals belong to the
// proof system; this service only routes it.
type Presentation struct {
	CredentialID string `json:"credentialId" cbor:"cred"`
	Proof        []byte `json:"proof" cbor:"proof"`
}

// Result is the business outcome of a verify call. A failed proof is a
// normal result, not an error.
type Result string

const (
	ResultVerified Result = "Verified"
	ResultFailed   Result = "Failed"
)

// AuditRecord captures the inputs and outcome of one completed verification
// for non-repudiation. Only Verified records are anchored on-chain.
type AuditRecord struct {
	AuditRecordID string              `json:"auditRecordId" cbor:"id"`
	Request       VerificationRequest `json:"verificationRequest" cbor:"request"`
	Presentation  Presentation        `json:"presentation" cbor:"presentation"`
	Result        Result              `json:"verificationResult" cbor:"result"`
	Reason        string              `json:"reason,omitempty" cbor:"reason,omitempty"`
	VerifiedAt    time.Time           `json:"verifiedAt" cbor:"at"`
}

// CreateRequestInput is the workflow input for create-verification-request.
type CreateRequestInput struct {
	ConnectionID  string
	ResourceID    string
	ContextString string
	Claims        []statement.SubjectClaim
	PublicInfo    []byte
}

// VerifyInput is the workflow input for verify-presentation.
type VerifyInput struct {
	AuditRecordID string
	Presentation  Presentation
	Request       VerificationRequest
	PublicInfo    []byte
}

// VerifyOutput is returned for both verified and failed presentations.
// AnchorTransactionHash is set only when an audit anchor was submitted.
type VerifyOutput struct {
	Result                Result
	Reason                string
	AnchorTransactionHash *chain.TransactionHash
	AuditRecord           AuditRecord
}

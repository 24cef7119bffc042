package handler

import (
	"strings"

	"anchorid/internal/statement"
	"anchorid/internal/verification"
	dErrors "anchorid/pkg/domain-errors"
)

// CreateRequestBody is the HTTP request body for
// POST /verifiable-presentations/create-verification-request.
// Statement-level validation is the service's job and comes back as
// path-addressed details; Validate only rejects bodies the workflow cannot
// even start on.
type CreateRequestBody struct {
	ConnectionID    string                   `json:"connectionId"`
	ResourceID      string                   `json:"resourceId"`
	ContextString   string                   `json:"contextString,omitempty"`
	RequestedClaims []statement.SubjectClaim `json:"requestedClaims"`
	PublicInfo      []byte                   `json:"publicInfo,omitempty"`
}

func (r *CreateRequestBody) Validate() error {
	r.ConnectionID = strings.TrimSpace(r.ConnectionID)
	if r.ConnectionID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "connectionId is required")
	}
	r.ResourceID = strings.TrimSpace(r.ResourceID)
	if r.ResourceID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "resourceId is required")
	}
	if len(r.RequestedClaims) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "requestedClaims must not be empty")
	}
	return nil
}

// Input converts the body into the workflow input.
func (r *CreateRequestBody) Input() verification.CreateRequestInput {
	return verification.CreateRequestInput{
		ConnectionID:  r.ConnectionID,
		ResourceID:    r.ResourceID,
		ContextString: r.ContextString,
		Claims:        r.RequestedClaims,
		PublicInfo:    r.PublicInfo,
	}
}

// VerifyBody is the HTTP request body for
// POST /verifiable-presentations/verify.
type VerifyBody struct {
	AuditRecordID       string                           `json:"auditRecordId"`
	Presentation        verification.Presentation        `json:"presentation"`
	VerificationRequest verification.VerificationRequest `json:"verificationRequest"`
	PublicInfo          []byte                           `json:"publicInfo,omitempty"`
}

func (r *VerifyBody) Validate() error {
	r.AuditRecordID = strings.TrimSpace(r.AuditRecordID)
	if r.AuditRecordID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "auditRecordId is required")
	}
	if r.Presentation.CredentialID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "presentation.credentialId is required")
	}
	if len(r.Presentation.Proof) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "presentation.proof is required")
	}
	if r.VerificationRequest.AnchorTransactionHash == "" {
		return dErrors.New(dErrors.CodeBadRequest, "verificationRequest.anchorTransactionHash is required")
	}
	return nil
}

// Input converts the body into the workflow input.
func (r *VerifyBody) Input() verification.VerifyInput {
	return verification.VerifyInput{
		AuditRecordID: r.AuditRecordID,
		Presentation:  r.Presentation,
		Request:       r.VerificationRequest,
		PublicInfo:    r.PublicInfo,
	}
}

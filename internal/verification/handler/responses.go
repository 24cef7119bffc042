package handler

import "anchorid/internal/verification"

// VerifyResponse is the HTTP response for POST /verifiable-presentations/verify.
// Both verified and failed proofs return 200; the hash is present only when
// an audit anchor was submitted.
type VerifyResponse struct {
	Result                string                   `json:"result"`
	Reason                string                   `json:"reason,omitempty"`
	AnchorTransactionHash *string                  `json:"anchorTransactionHash,omitempty"`
	VerificationAudit     verification.AuditRecord `json:"verificationAuditRecord"`
}

// FromVerifyOutput converts the workflow output to an HTTP response.
func FromVerifyOutput(output *verification.VerifyOutput) VerifyResponse {
	response := VerifyResponse{
		Result:            string(output.Result),
		Reason:            output.Reason,
		VerificationAudit: output.AuditRecord,
	}
	if output.AnchorTransactionHash != nil {
		hash := string(*output.AnchorTransactionHash)
		response.AnchorTransactionHash = &hash
	}
	return response
}

// Package verifier holds the built-in proof verifier. Structural performs
// the checks that need no proof-system backend: credential status, challenge
// shape, and the anchored envelope. A cryptographic verifier plugs in behind
// the same interface without touching the workflow.
package verifier

import (
	"anchorid/internal/anchor"
	"anchorid/internal/chain"
	"anchorid/internal/verification"
)

// Structural verifies the parts of a presentation that are checkable without
// a zero-knowledge backend. It is pure and safe for concurrent use.
type Structural struct {
	codec *anchor.Codec
}

// NewStructural builds the verifier around the anchor codec so it can decode
// the on-chain envelope.
func NewStructural(codec *anchor.Codec) *Structural {
	return &Structural{codec: codec}
}

func (v *Structural) Verify(
	presentation verification.Presentation,
	requestAnchor chain.AnchorData,
	material chain.CredentialMaterial,
	_ chain.CryptographicParameters,
	context verification.RequestContext,
) verification.Outcome {
	if material.Revoked {
		return verification.Outcome{Reason: "credential is revoked"}
	}
	if presentation.CredentialID != material.CredentialID {
		return verification.Outcome{Reason: "presentation credential does not match on-chain material"}
	}
	if len(presentation.Proof) == 0 {
		return verification.Outcome{Reason: "presentation carries no proof"}
	}
	if len(context.Nonce) != 32 {
		return verification.Outcome{Reason: "request challenge is malformed"}
	}

	var envelope anchor.Envelope
	if err := v.codec.Decode(requestAnchor.Data, &envelope); err != nil {
		return verification.Outcome{Reason: "anchor envelope is undecodable"}
	}
	if envelope.Version != anchor.EnvelopeVersion {
		return verification.Outcome{Reason: "anchor envelope version is unsupported"}
	}
	if len(envelope.Digest) != 32 {
		return verification.Outcome{Reason: "anchor digest is malformed"}
	}

	return verification.Outcome{Verified: true}
}

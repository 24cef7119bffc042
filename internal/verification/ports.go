package verification

import "anchorid/internal/chain"

//go:generate mockgen -source=ports.go -destination=mocks/mock_verifier.go -package=mocks

// Outcome is the proof verifier's verdict.
type Outcome struct {
	Verified bool
	Reason   string
}

// ProofVerifier checks a presentation against the anchored request context
// and the holder's on-chain credential material. Verify is pure: no side
// effects, no network, deterministic for identical inputs. A cryptographic
// failure is reported in the Outcome, never as a panic.
type ProofVerifier interface {
	Verify(
		presentation Presentation,
		requestAnchor chain.AnchorData,
		material chain.CredentialMaterial,
		params chain.CryptographicParameters,
		context RequestContext,
	) Outcome
}

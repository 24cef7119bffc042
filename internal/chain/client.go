// Package chain defines the narrow surface this service consumes from the
// blockchain node. The node's wire protocol, signing scheme, and proof system
// live behind this interface; the service only needs sequence numbers,
// register-data submission, and a handful of side-effect-free reads.
package chain

import (
	"context"
	"errors"
	"time"
)

// Nonce is a per-account monotonically increasing sequence number required to
// order that account's transactions on-chain.
type Nonce uint64

// AccountAddress identifies an on-chain account.
type AccountAddress string

// TransactionHash identifies a submitted transaction.
type TransactionHash string

// BlockHash identifies a block.
type BlockHash string

// RegisteredData is the size-bounded payload of a register-data transaction.
type RegisteredData []byte

// BlockInfo is the consensus view used to label verification requests.
type BlockInfo struct {
	Hash     BlockHash
	Height   uint64
	SlotTime time.Time
}

// CryptographicParameters are the chain's global commitment parameters,
// opaque to this service and handed through to the proof verifier.
type CryptographicParameters struct {
	GenesisString string
	CommitmentKey []byte
}

// AnchorData is a previously registered anchor as read back from chain.
type AnchorData struct {
	Data      RegisteredData
	Block     BlockHash
	Finalized bool
}

// CredentialMaterial is the holder's current on-chain credential state:
// commitments the proof verifier checks a presentation against.
type CredentialMaterial struct {
	CredentialID string
	Commitments  []byte
	Revoked      bool
}

// Transaction is a register-data transaction ready for signing and
// submission. Expiry bounds how long the node may hold it unordered.
type Transaction struct {
	Signer string
	Sender AccountAddress
	Nonce  Nonce
	Expiry time.Time
	Data   RegisteredData
}

// ErrSequenceMismatch is the conflict class the sequencer recovers from:
// the submitted nonce does not match the account's next on-chain nonce.
var ErrSequenceMismatch = errors.New("account sequence number mismatch")

// IsSequenceMismatch reports whether err is the recoverable nonce conflict,
// as opposed to any other submission failure.
func IsSequenceMismatch(err error) bool {
	return errors.Is(err, ErrSequenceMismatch)
}

// Client is the node access surface. All reads are side-effect-free and safe
// to issue concurrently; SubmitRegisteredData is the only state-changing call.
type Client interface {
	// NextAccountSequenceNumber returns the account's next usable nonce as
	// the node sees it.
	NextAccountSequenceNumber(ctx context.Context, account AccountAddress) (Nonce, error)

	// SubmitRegisteredData signs and submits a register-data transaction,
	// returning its hash. Returns ErrSequenceMismatch (possibly wrapped)
	// when the nonce is stale.
	SubmitRegisteredData(ctx context.Context, tx Transaction) (TransactionHash, error)

	// ConsensusBlockInfo returns the current best block.
	ConsensusBlockInfo(ctx context.Context) (BlockInfo, error)

	// CryptographicParameters returns the chain's commitment parameters.
	CryptographicParameters(ctx context.Context) (CryptographicParameters, error)

	// LookupAnchor resolves a previously submitted anchor transaction. The
	// anchor must exist but need not be finalized. Missing anchors surface
	// as sentinel.ErrNotFound.
	LookupAnchor(ctx context.Context, hash TransactionHash) (AnchorData, error)

	// CredentialMaterial fetches the holder's current credential commitments.
	CredentialMaterial(ctx context.Context, credentialID string) (CredentialMaterial, error)
}

package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"anchorid/pkg/platform/sentinel"
)

// MemoryNode is a deterministic in-process node used by unit tests and local
// runs. It enforces sequence numbers the way a real node does, assigns
// deterministic transaction hashes, and exposes stub hooks for everything a
// test needs to arrange.
type MemoryNode struct {
	mu sync.Mutex

	nextNonce   map[AccountAddress]Nonce
	anchors     map[TransactionHash]AnchorData
	credentials map[string]CredentialMaterial
	submitted   []Transaction
	failSubmits []error

	block  BlockInfo
	params CryptographicParameters
}

// NewMemoryNode returns a node with an empty ledger and a fixed best block.
func NewMemoryNode() *MemoryNode {
	return &MemoryNode{
		nextNonce:   make(map[AccountAddress]Nonce),
		anchors:     make(map[TransactionHash]AnchorData),
		credentials: make(map[string]CredentialMaterial),
		block: BlockInfo{
			Hash:   BlockHash("11d45b6f2f0b65ec46cd8ae1c7b17b9a94b8a1ddd6d6f0b1f4c2d86904b6a9c3"),
			Height: 1,
		},
		params: CryptographicParameters{GenesisString: "memory-node"},
	}
}

// SetNextNonce overrides the node-side next nonce for an account.
func (n *MemoryNode) SetNextNonce(account AccountAddress, nonce Nonce) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextNonce[account] = nonce
}

// FailNextSubmit makes the next submission fail with err before any ledger
// state changes. Queue several to script consecutive failures.
func (n *MemoryNode) FailNextSubmit(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failSubmits = append(n.failSubmits, err)
}

// StubAnchor plants an anchor lookup result.
func (n *MemoryNode) StubAnchor(hash TransactionHash, data AnchorData) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.anchors[hash] = data
}

// StubCredential plants credential material for a holder.
func (n *MemoryNode) StubCredential(material CredentialMaterial) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.credentials[material.CredentialID] = material
}

// SetBlockInfo overrides the best block returned by ConsensusBlockInfo.
func (n *MemoryNode) SetBlockInfo(info BlockInfo) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.block = info
}

// SubmittedTransactions returns a copy of everything accepted so far, in
// submission order.
func (n *MemoryNode) SubmittedTransactions() []Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Transaction, len(n.submitted))
	copy(out, n.submitted)
	return out
}

func (n *MemoryNode) NextAccountSequenceNumber(_ context.Context, account AccountAddress) (Nonce, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.nextNonce[account], nil
}

func (n *MemoryNode) SubmitRegisteredData(_ context.Context, tx Transaction) (TransactionHash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.failSubmits) > 0 {
		err := n.failSubmits[0]
		n.failSubmits = n.failSubmits[1:]
		return "", err
	}
	if expected := n.nextNonce[tx.Sender]; tx.Nonce != expected {
		return "", fmt.Errorf("submit with nonce %d, node expects %d: %w", tx.Nonce, expected, ErrSequenceMismatch)
	}

	n.nextNonce[tx.Sender]++
	n.submitted = append(n.submitted, tx)

	hash := txHash(tx)
	n.anchors[hash] = AnchorData{Data: tx.Data, Block: n.block.Hash}
	return hash, nil
}

func (n *MemoryNode) ConsensusBlockInfo(_ context.Context) (BlockInfo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.block, nil
}

func (n *MemoryNode) CryptographicParameters(_ context.Context) (CryptographicParameters, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.params, nil
}

func (n *MemoryNode) LookupAnchor(_ context.Context, hash TransactionHash) (AnchorData, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	anchor, ok := n.anchors[hash]
	if !ok {
		return AnchorData{}, fmt.Errorf("anchor %s: %w", hash, sentinel.ErrNotFound)
	}
	return anchor, nil
}

func (n *MemoryNode) CredentialMaterial(_ context.Context, credentialID string) (CredentialMaterial, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	material, ok := n.credentials[credentialID]
	if !ok {
		return CredentialMaterial{}, fmt.Errorf("credential %s: %w", credentialID, sentinel.ErrNotFound)
	}
	return material, nil
}

// txHash derives a stable hash from the transaction contents so repeated
// test runs see identical ids.
func txHash(tx Transaction) TransactionHash {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|", tx.Sender, tx.Nonce)
	h.Write(tx.Data)
	return TransactionHash(hex.EncodeToString(h.Sum(nil)))
}

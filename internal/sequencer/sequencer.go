// Package sequencer owns the next usable sequence number for one signing
// account. Every on-chain submission for that account goes through WithNonce,
// which serializes "compute nonce, sign, submit" and advances the counter
// only when the node accepted the transaction. An unsubmitted transaction
// must never burn a sequence number.
//
// One Sequencer exists per signing account and is passed by handle into the
// workflows that submit, not reached through a singleton. Correctness holds
// within a single process; instances sharing a signing account across
// processes are unsupported.
package sequencer

import (
	"context"
	"fmt"
	"sync"

	"anchorid/internal/chain"
)

// Sequencer guards one account's sequence state.
type Sequencer struct {
	node    chain.Client
	account chain.AccountAddress

	mu   sync.Mutex
	next chain.Nonce
}

// New starts the sequencer at a known nonce, typically from NewFromChain.
func New(node chain.Client, account chain.AccountAddress, initial chain.Nonce) *Sequencer {
	return &Sequencer{node: node, account: account, next: initial}
}

// NewFromChain initializes the counter from the node's view of the account.
func NewFromChain(ctx context.Context, node chain.Client, account chain.AccountAddress) (*Sequencer, error) {
	nonce, err := node.NextAccountSequenceNumber(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("initial sequence number for %s: %w", account, err)
	}
	return New(node, account, nonce), nil
}

// Account returns the signing account this sequencer owns.
func (s *Sequencer) Account() chain.AccountAddress {
	return s.account
}

// WithNonce runs submit with the next nonce inside the critical section. On
// success the counter advances; on any failure it stays put so the nonce can
// be reused by the next attempt. The critical section must contain nothing
// but building, signing, and submitting the transaction — callers do proof
// verification and chain reads outside.
func (s *Sequencer) WithNonce(ctx context.Context, submit func(nonce chain.Nonce) (chain.TransactionHash, error)) (chain.TransactionHash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	hash, err := submit(s.next)
	if err != nil {
		return "", err
	}
	s.next++
	return hash, nil
}

// Refresh overwrites the counter with the node's current view. Call it only
// after a submission failed with a sequence-number mismatch; anywhere else it
// can move the counter backwards past in-flight transactions.
func (s *Sequencer) Refresh(ctx context.Context) (chain.Nonce, error) {
	nonce, err := s.node.NextAccountSequenceNumber(ctx, s.account)
	if err != nil {
		return 0, fmt.Errorf("refresh sequence number for %s: %w", s.account, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = nonce
	return nonce, nil
}

package sequencer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anchorid/internal/chain"
)

const account = chain.AccountAddress("3kBx2h5Y2veb4hZgAJWPrr8RyQESKm5TjzF3ti1QQ4VSYLwK1G")

func TestWithNonce_SequentialSubmissions(t *testing.T) {
	node := chain.NewMemoryNode()
	node.SetNextNonce(account, 7)
	seq, err := NewFromChain(context.Background(), node, account)
	require.NoError(t, err)

	var used []chain.Nonce
	submit := func(nonce chain.Nonce) (chain.TransactionHash, error) {
		used = append(used, nonce)
		return node.SubmitRegisteredData(context.Background(), chain.Transaction{
			Sender: account,
			Nonce:  nonce,
			Data:   chain.RegisteredData{0x01},
		})
	}

	_, err = seq.WithNonce(context.Background(), submit)
	require.NoError(t, err)
	_, err = seq.WithNonce(context.Background(), submit)
	require.NoError(t, err)

	assert.Equal(t, []chain.Nonce{7, 8}, used)
}

func TestWithNonce_FailureDoesNotBurnNonce(t *testing.T) {
	node := chain.NewMemoryNode()
	node.SetNextNonce(account, 3)
	seq := New(node, account, 3)

	boom := errors.New("node rejected")
	_, err := seq.WithNonce(context.Background(), func(nonce chain.Nonce) (chain.TransactionHash, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)

	var next chain.Nonce
	_, err = seq.WithNonce(context.Background(), func(nonce chain.Nonce) (chain.TransactionHash, error) {
		next = nonce
		return "deadbeef", nil
	})
	require.NoError(t, err)
	assert.Equal(t, chain.Nonce(3), next, "failed submission must not advance the counter")
}

func TestRefresh_OverwritesCounter(t *testing.T) {
	node := chain.NewMemoryNode()
	node.SetNextNonce(account, 10)
	seq := New(node, account, 4)

	refreshed, err := seq.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chain.Nonce(10), refreshed)

	var next chain.Nonce
	_, err = seq.WithNonce(context.Background(), func(nonce chain.Nonce) (chain.TransactionHash, error) {
		next = nonce
		return "deadbeef", nil
	})
	require.NoError(t, err)
	assert.Equal(t, chain.Nonce(10), next, "submission after refresh must use the refreshed nonce")
}

func TestWithNonce_SerializesConcurrentSubmissions(t *testing.T) {
	node := chain.NewMemoryNode()
	seq := New(node, account, 0)

	const submissions = 50
	var wg sync.WaitGroup
	for range submissions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := seq.WithNonce(context.Background(), func(nonce chain.Nonce) (chain.TransactionHash, error) {
				return node.SubmitRegisteredData(context.Background(), chain.Transaction{
					Sender: account,
					Nonce:  nonce,
					Data:   chain.RegisteredData{0x01},
				})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	submitted := node.SubmittedTransactions()
	require.Len(t, submitted, submissions)
	seen := make(map[chain.Nonce]bool, submissions)
	for _, tx := range submitted {
		assert.False(t, seen[tx.Nonce], "nonce %d used twice", tx.Nonce)
		seen[tx.Nonce] = true
	}
}

func TestWithNonce_CanceledContext(t *testing.T) {
	node := chain.NewMemoryNode()
	seq := New(node, account, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := seq.WithNonce(ctx, func(chain.Nonce) (chain.TransactionHash, error) {
		called = true
		return "", nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called, "canceled context must not reach the node")
}

package cache_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anchorid/internal/chain"
	"anchorid/internal/chain/cache"
	platformredis "anchorid/internal/platform/redis"
)

// countingNode counts reads so tests can tell a cache hit from a fall-through.
type countingNode struct {
	chain.Client
	blockInfoReads atomic.Int32
	paramReads     atomic.Int32
}

func (n *countingNode) ConsensusBlockInfo(ctx context.Context) (chain.BlockInfo, error) {
	n.blockInfoReads.Add(1)
	return n.Client.ConsensusBlockInfo(ctx)
}

func (n *countingNode) CryptographicParameters(ctx context.Context) (chain.CryptographicParameters, error) {
	n.paramReads.Add(1)
	return n.Client.CryptographicParameters(ctx)
}

func TestNewWithoutRedisReturnsNodeUnchanged(t *testing.T) {
	node := chain.NewMemoryNode()
	wrapped := cache.New(node, nil, 0, slog.New(slog.DiscardHandler))
	assert.Same(t, chain.Client(node), wrapped)
}

// An unreachable redis must degrade to direct node reads, never fail them.
func TestUnreachableRedisFallsThrough(t *testing.T) {
	ctx := context.Background()
	node := &countingNode{Client: chain.NewMemoryNode()}

	// Port 1 refuses connections immediately.
	unreachable := &platformredis.Client{
		Client: goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}),
	}
	wrapped := cache.New(node, unreachable, 0, slog.New(slog.DiscardHandler))

	info, err := wrapped.ConsensusBlockInfo(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Hash)

	_, err = wrapped.CryptographicParameters(ctx)
	require.NoError(t, err)

	// Every read reached the node because nothing could be cached.
	_, err = wrapped.ConsensusBlockInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), node.blockInfoReads.Load())
	assert.Equal(t, int32(1), node.paramReads.Load())
}

// Package cache layers a read-through TTL cache over the two hot
// side-effect-free node reads: consensus block info and cryptographic
// parameters. Anchors, credentials, and sequence numbers are never cached —
// staleness there changes behavior, not just latency.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"anchorid/internal/chain"
	platformredis "anchorid/internal/platform/redis"
)

const (
	keyBlockInfo  = "anchorid:chain:block-info"
	keyParameters = "anchorid:chain:crypto-params"
)

// Client wraps a chain.Client. A redis outage degrades to direct node reads;
// it never fails a request.
type Client struct {
	chain.Client
	redis  *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New returns the underlying client unchanged when redis is not configured.
func New(node chain.Client, redis *platformredis.Client, ttl time.Duration, logger *slog.Logger) chain.Client {
	if redis == nil {
		return node
	}
	return &Client{Client: node, redis: redis, ttl: ttl, logger: logger}
}

func (c *Client) ConsensusBlockInfo(ctx context.Context) (chain.BlockInfo, error) {
	var cached chain.BlockInfo
	if c.lookup(ctx, keyBlockInfo, &cached) {
		return cached, nil
	}
	info, err := c.Client.ConsensusBlockInfo(ctx)
	if err != nil {
		return chain.BlockInfo{}, err
	}
	c.store(ctx, keyBlockInfo, info)
	return info, nil
}

func (c *Client) CryptographicParameters(ctx context.Context) (chain.CryptographicParameters, error) {
	var cached chain.CryptographicParameters
	if c.lookup(ctx, keyParameters, &cached) {
		return cached, nil
	}
	params, err := c.Client.CryptographicParameters(ctx)
	if err != nil {
		return chain.CryptographicParameters{}, err
	}
	c.store(ctx, keyParameters, params)
	return params, nil
}

func (c *Client) lookup(ctx context.Context, key string, out any) bool {
	payload, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		c.logger.WarnContext(ctx, "chain cache entry corrupt, falling through",
			"key", key,
			"error", err,
		)
		return false
	}
	return true
}

func (c *Client) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "chain cache write failed",
			"key", key,
			"error", err,
		)
	}
}

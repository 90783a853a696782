package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/flowplan/backend-go/internal/config"
	"github.com/flowplan/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	projectionSummaryKeyPrefix = "projection:summary"
	projectionScanBatchSize    = 100
)

// SummaryKey identifies one cached projection summary. AsOf is the
// reference date the projection ran against, truncated to the day.
type SummaryKey struct {
	SeriesID    string
	HorizonDays int
	AsOf        time.Time
}

type ProjectionCache interface {
	GetSummary(ctx context.Context, key SummaryKey) (*domain.Summary, bool, error)
	SetSummary(ctx context.Context, key SummaryKey, summary domain.Summary) error
	InvalidateSummary(ctx context.Context, key SummaryKey) error
	InvalidateAll(ctx context.Context) error
}

type redisProjectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopProjectionCache struct{}

func NewProjectionCache(cfg config.CacheConfig) (ProjectionCache, error) {
	if !cfg.Enabled {
		return &noopProjectionCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisProjectionCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopProjectionCache() ProjectionCache {
	return &noopProjectionCache{}
}

func (c *redisProjectionCache) GetSummary(ctx context.Context, key SummaryKey) (*domain.Summary, bool, error) {
	payload, err := c.client.Get(ctx, buildSummaryKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode projection summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisProjectionCache) SetSummary(ctx context.Context, key SummaryKey, summary domain.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode projection summary cache: %w", err)
	}

	if err := c.client.Set(ctx, buildSummaryKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisProjectionCache) InvalidateSummary(ctx context.Context, key SummaryKey) error {
	return c.client.Del(ctx, buildSummaryKey(key)).Err()
}

func (c *redisProjectionCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, projectionSummaryKeyPrefix, projectionScanBatchSize)
}

func (n *noopProjectionCache) GetSummary(ctx context.Context, key SummaryKey) (*domain.Summary, bool, error) {
	return nil, false, nil
}

func (n *noopProjectionCache) SetSummary(ctx context.Context, key SummaryKey, summary domain.Summary) error {
	return nil
}

func (n *noopProjectionCache) InvalidateSummary(ctx context.Context, key SummaryKey) error {
	return nil
}

func (n *noopProjectionCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSummaryKey(key SummaryKey) string {
	return fmt.Sprintf("%s:%s", projectionSummaryKeyPrefix, summaryKeyHash(key))
}

func summaryKeyHash(key SummaryKey) string {
	raw := key.SeriesID + "|" + strconv.Itoa(key.HorizonDays) + "|" + key.AsOf.Format("2006-01-02")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Package cache caches computed ledger reports in Redis and invalidates them
// when movement tables change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yemzchef-ui/superchefs/internal/domain/reports"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

const (
	versionKey  = "superchefs:ledger:version"
	BumpChannel = "superchefs.ledger.bump"

	// versionRefresh bounds how long a local version is trusted without
	// re-reading the shared one, in case a bump message was missed.
	versionRefresh = 30 * time.Second
)

var _ reports.Cache = (*ReportCache)(nil)

// ReportCache is a versioned JSON cache. Bumping the version orphans every
// key built before it; orphans expire with the TTL.
//
// Keys are built from a per-instance copy of the version. Bumps made by
// other instances reach it through the pub/sub listener.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.Mutex
	local    int64
	syncedAt time.Time
}

// NewReportCache instantiates the cache. A nil client disables caching.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) disabled() bool { return c == nil || c.client == nil }

// Enabled reports whether a Redis client is configured.
func (c *ReportCache) Enabled() bool { return !c.disabled() }

// Version returns the shared cache version, initialising when missing.
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	if c.disabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *ReportCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c.disabled() {
		return joined, nil
	}
	ver, err := c.localVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("cache version: %w", err)
	}
	return fmt.Sprintf("superchefs:%s:v%d", joined, ver), nil
}

// localVersion returns this instance's version, re-reading the shared one
// when it was never loaded or is older than versionRefresh.
func (c *ReportCache) localVersion(ctx context.Context) (int64, error) {
	c.mu.Lock()
	ver, fresh := c.local, time.Since(c.syncedAt) < versionRefresh
	c.mu.Unlock()
	if ver > 0 && fresh {
		return ver, nil
	}
	shared, err := c.Version(ctx)
	if err != nil {
		return 0, err
	}
	return c.observe(shared), nil
}

// observe moves the local version forward, never back, and returns it.
func (c *ReportCache) observe(ver int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ver > c.local {
		c.local = ver
	}
	c.syncedAt = time.Now()
	return c.local
}

// FetchJSON loads a cached value or populates it using the loader.
// Loader errors are never cached. A failing Redis read or write is logged
// and the loader result served directly.
func (c *ReportCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if !c.disabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if !c.disabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached report by incrementing the version and
// publishing it to the other instances.
func (c *ReportCache) Bump(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	c.observe(ver)
	return c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bumps published by other instances
// until ctx is done.
func (c *ReportCache) ListenForInvalidation(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, BumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", BumpChannel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				c.applyBump(ctx, msg.Payload)
			}
		}
	}()
	return nil
}

// applyBump records a version published by another instance. An
// unreadable payload forces a re-read of the shared version.
func (c *ReportCache) applyBump(ctx context.Context, payload string) {
	ver, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		if ver, err = c.Version(ctx); err != nil {
			logger.Warn(ctx, "report cache version resync failed", "error", err)
			return
		}
	}
	c.observe(ver)
}

// Ping checks Redis connectivity.
func (c *ReportCache) Ping(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

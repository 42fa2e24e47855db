package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/playtube/backend/internal/models"
)

// ErrStatsUnavailable indicates no stats source backs the cache.
var ErrStatsUnavailable = errors.New("channel stats unavailable")

// StatsSource computes aggregate figures for a channel.
type StatsSource interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

type statsEntry struct {
	stats   models.ChannelStats
	expires time.Time
}

// StatsCache wraps a StatsSource with a TTL-based in-memory cache. Dashboard
// figures tolerate short staleness, so repeated loads within the TTL reuse the
// previous aggregation instead of re-running it.
type StatsCache struct {
	base StatsSource
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]statsEntry
}

// NewStatsCache returns a StatsSource that caches lookups for the provided TTL.
func NewStatsCache(base StatsSource, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsCache{
		base:  base,
		ttl:   ttl,
		items: make(map[string]statsEntry),
	}
}

// ChannelStats returns cached figures when available, otherwise it delegates
// to the underlying source and stores the result.
func (c *StatsCache) ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	if c == nil || c.base == nil {
		return models.ChannelStats{}, ErrStatsUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[channelID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.stats, nil
	}

	stats, err := c.base.ChannelStats(ctx, channelID)
	if err != nil {
		return models.ChannelStats{}, err
	}

	c.mu.Lock()
	c.items[channelID] = statsEntry{stats: stats, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return stats, nil
}

// Invalidate drops any cached entry for the channel.
func (c *StatsCache) Invalidate(channelID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, channelID)
	c.mu.Unlock()
}

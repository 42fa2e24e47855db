package views

import (
	"context"
	"fmt"

	"github.com/playtube/backend/internal/models"
)

// VideoAggregator supplies the per-video side of the channel figures.
type VideoAggregator interface {
	ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error)
}

// SubscriberCounter supplies the subscriber total for a channel.
type SubscriberCounter interface {
	CountForChannel(ctx context.Context, channelID string) (int64, error)
}

// ChannelStatsSource composes the video aggregates and the subscriber count
// into the complete dashboard projection.
type ChannelStatsSource struct {
	videos      VideoAggregator
	subscribers SubscriberCounter
}

// NewChannelStatsSource combines the two aggregate sources into one StatsSource.
func NewChannelStatsSource(videos VideoAggregator, subscribers SubscriberCounter) *ChannelStatsSource {
	return &ChannelStatsSource{videos: videos, subscribers: subscribers}
}

// ChannelStats computes the full dashboard figures for a channel.
func (s *ChannelStatsSource) ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	stats, err := s.videos.ChannelStats(ctx, channelID)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("aggregate videos: %w", err)
	}

	total, err := s.subscribers.CountForChannel(ctx, channelID)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("count subscribers: %w", err)
	}

	stats.TotalSubscribers = total
	return stats, nil
}

var _ StatsSource = (*ChannelStatsSource)(nil)

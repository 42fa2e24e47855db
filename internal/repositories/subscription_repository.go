package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// SubscriptionRepository toggles and projects channel subscriptions.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) (models.SubscriberList, error)
	Channels(ctx context.Context, subscriberID string) (models.ChannelList, error)
	CountForChannel(ctx context.Context, channelID string) (int64, error)
}

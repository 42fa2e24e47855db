package repositories

import (
	"context"
	"fmt"
	"time"

	crdbpgxv5 "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/models"
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// channel subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository
// backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the subscription state for (subscriber, channel) and reports
// the post-transition state. Same transactional shape as like toggles; the
// unique index on (subscriber_id, channel_id) rules out duplicate rows.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var subscribed bool
	err = crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            DELETE FROM subscriptions
            WHERE subscriber_id = $1 AND channel_id = $2
        `, subscriberID, channelID)
		if err != nil {
			return fmt.Errorf("delete subscription: %w", err)
		}

		if tag.RowsAffected() > 0 {
			subscribed = false
			return nil
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT DO NOTHING
        `, uuid.NewString(), subscriberID, channelID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}

		subscribed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return subscribed, nil
}

// Subscribers projects the flattened subscriber summaries for a channel plus
// a total that is 0 when no rows match.
func (r *PostgresSubscriptionRepository) Subscribers(ctx context.Context, channelID string) (models.SubscriberList, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.SubscriberList{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.username, u.full_name, u.avatar_url, COUNT(*) OVER () AS total
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
	if err != nil {
		return models.SubscriberList{}, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var list models.SubscriberList
	for rows.Next() {
		var summary models.UserSummary
		if err := rows.Scan(&summary.Username, &summary.FullName, &summary.AvatarURL, &list.Total); err != nil {
			return models.SubscriberList{}, fmt.Errorf("scan subscriber: %w", err)
		}
		list.Subscribers = append(list.Subscribers, summary)
	}

	if err := rows.Err(); err != nil {
		return models.SubscriberList{}, fmt.Errorf("iterate subscribers: %w", err)
	}

	return list, nil
}

// Channels projects the channels a user subscribes to, plus the count.
func (r *PostgresSubscriptionRepository) Channels(ctx context.Context, subscriberID string) (models.ChannelList, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelList{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.username, u.full_name, u.avatar_url, COUNT(*) OVER () AS total
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
	if err != nil {
		return models.ChannelList{}, fmt.Errorf("query subscribed channels: %w", err)
	}
	defer rows.Close()

	var list models.ChannelList
	for rows.Next() {
		var summary models.UserSummary
		if err := rows.Scan(&summary.Username, &summary.FullName, &summary.AvatarURL, &list.Total); err != nil {
			return models.ChannelList{}, fmt.Errorf("scan subscribed channel: %w", err)
		}
		list.Channels = append(list.Channels, summary)
	}

	if err := rows.Err(); err != nil {
		return models.ChannelList{}, fmt.Errorf("iterate subscribed channels: %w", err)
	}

	return list, nil
}

// CountForChannel returns the subscriber count for a channel.
func (r *PostgresSubscriptionRepository) CountForChannel(ctx context.Context, channelID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	row := conn.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}

	return count, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)

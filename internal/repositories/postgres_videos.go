package repositories

import (
	"context"
	"errors"
	"fmt"

	crdbpgxv5 "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/models"
)

func videoColumnsPrefixed(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.owner_id, %[1]s.title, %[1]s.description, %[1]s.duration,
        %[1]s.video_url, %[1]s.video_key, %[1]s.thumbnail_url, %[1]s.thumbnail_key,
        %[1]s.views, %[1]s.published, %[1]s.created_at, %[1]s.updated_at`, alias)
}

func scanVideo(row rowScanner) (models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.Duration,
		&v.VideoURL, &v.VideoKey, &v.ThumbnailURL, &v.ThumbnailKey,
		&v.Views, &v.Published, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, duration, video_url, video_key, thumbnail_url, thumbnail_key, views, published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.Duration,
		video.VideoURL, video.VideoKey, video.ThumbnailURL, video.ThumbnailKey,
		video.Views, video.Published, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by primary key.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+videoColumnsPrefixed("v")+` FROM videos v WHERE v.id = $1`, id)
	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

var videoSortColumns = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"views":     "views",
	"duration":  "duration",
}

// List returns a page of videos matching the filter.
func (r *PostgresVideoRepository) List(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sortColumn, ok := videoSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT `+videoColumnsPrefixed("v")+`
        FROM videos v
        WHERE ($1 = '' OR v.owner_id = $1)
          AND ($2 = '' OR v.title ILIKE '%%' || $2 || '%%')
          AND (v.published OR v.owner_id = $3)
        ORDER BY v.%s %s
        OFFSET $4 LIMIT $5
    `, sortColumn, direction), filter.OwnerID, filter.Title, filter.ViewerID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// Update modifies a video's mutable fields.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, thumbnail_key = $5, updated_at = $6
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.ThumbnailURL, video.ThumbnailKey, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPublished flips the publish flag.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET published = $2 WHERE id = $1`, id, published)
	if err != nil {
		return fmt.Errorf("update publish status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementViews bumps the view counter by one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video and everything hanging off it: likes on the video,
// its comments plus their likes, playlist membership, watch history, and
// finally the video row. The whole cascade runs in one transaction.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            DELETE FROM likes
            WHERE comment_id IN (SELECT id FROM comments WHERE video_id = $1)
        `, id); err != nil {
			return fmt.Errorf("delete comment likes: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE video_id = $1`, id); err != nil {
			return fmt.Errorf("delete video likes: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE video_id = $1`, id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM playlist_videos WHERE video_id = $1`, id); err != nil {
			return fmt.Errorf("delete playlist membership: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM watch_history WHERE video_id = $1`, id); err != nil {
			return fmt.Errorf("delete watch history: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete video: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// Detail assembles the denormalized detail projection for a single video in
// one round trip: like count, the viewer's like flag, and the owner enriched
// with subscriber count and the viewer's subscription flag.
func (r *PostgresVideoRepository) Detail(ctx context.Context, videoID, viewerID string) (models.VideoDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumnsPrefixed("v")+`,
            (SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id) AS likes_count,
            EXISTS (SELECT 1 FROM likes l WHERE l.video_id = v.id AND l.liked_by_id = $2) AS is_liked,
            u.id, u.username, u.full_name, u.avatar_url,
            (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = v.owner_id) AS subscribers_count,
            EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = v.owner_id AND s.subscriber_id = $2) AS is_subscribed
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, videoID, viewerID)

	var detail models.VideoDetail
	err = row.Scan(&detail.ID, &detail.OwnerID, &detail.Title, &detail.Description, &detail.Duration,
		&detail.VideoURL, &detail.VideoKey, &detail.ThumbnailURL, &detail.ThumbnailKey,
		&detail.Views, &detail.Published, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.LikesCount, &detail.IsLiked,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.FullName, &detail.Owner.AvatarURL,
		&detail.Owner.SubscribersCount, &detail.Owner.IsSubscribed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoDetail{}, ErrNotFound
		}
		return models.VideoDetail{}, fmt.Errorf("select video detail: %w", err)
	}

	return detail, nil
}

// ChannelStats aggregates over the owner's videos: totals for videos, views,
// and per-video likes.
func (r *PostgresVideoRepository) ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT COUNT(v.id),
            COALESCE(SUM(v.views), 0),
            COALESCE(SUM((SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id)), 0)
        FROM videos v
        WHERE v.owner_id = $1
    `, ownerID)

	var stats models.ChannelStats
	if err := row.Scan(&stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes); err != nil {
		return models.ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}

	return stats, nil
}

// ChannelVideos lists the owner's videos annotated with per-video like counts.
func (r *PostgresVideoRepository) ChannelVideos(ctx context.Context, ownerID string) ([]models.ChannelVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumnsPrefixed("v")+`,
            (SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id) AS likes_count
        FROM videos v
        WHERE v.owner_id = $1
        ORDER BY v.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query channel videos: %w", err)
	}
	defer rows.Close()

	var videos []models.ChannelVideo
	for rows.Next() {
		var cv models.ChannelVideo
		if err := rows.Scan(&cv.ID, &cv.OwnerID, &cv.Title, &cv.Description, &cv.Duration,
			&cv.VideoURL, &cv.VideoKey, &cv.ThumbnailURL, &cv.ThumbnailKey,
			&cv.Views, &cv.Published, &cv.CreatedAt, &cv.UpdatedAt, &cv.LikesCount); err != nil {
			return nil, fmt.Errorf("scan channel video: %w", err)
		}
		videos = append(videos, cv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel videos: %w", err)
	}

	return videos, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)

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

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for
// playlists and their ordered video membership.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by
// PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create persists a new, empty playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// FindByID fetches a playlist with its ordered video id list.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
            COALESCE((
                SELECT array_agg(pv.video_id ORDER BY pv.position)
                FROM playlist_videos pv
                WHERE pv.playlist_id = p.id
            ), '{}') AS video_ids
        FROM playlists p
        WHERE p.id = $1
    `, id)

	var playlist models.Playlist
	if err := row.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name, &playlist.Description,
		&playlist.CreatedAt, &playlist.UpdatedAt, &playlist.VideoIDs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	return playlist, nil
}

// Detail fetches a playlist with its member videos resolved in order.
func (r *PostgresPlaylistRepository) Detail(ctx context.Context, id string) (models.PlaylistDetail, error) {
	playlist, err := r.FindByID(ctx, id)
	if err != nil {
		return models.PlaylistDetail{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumnsPrefixed("v")+`
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position
    `, id)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	detail := models.PlaylistDetail{Playlist: playlist}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return models.PlaylistDetail{}, fmt.Errorf("scan playlist video: %w", err)
		}
		detail.Videos = append(detail.Videos, video)
	}

	if err := rows.Err(); err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return detail, nil
}

// ListForUser returns a user's playlists, newest first.
func (r *PostgresPlaylistRepository) ListForUser(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
            COALESCE((
                SELECT array_agg(pv.video_id ORDER BY pv.position)
                FROM playlist_videos pv
                WHERE pv.playlist_id = p.id
            ), '{}') AS video_ids
        FROM playlists p
        WHERE p.owner_id = $1
        ORDER BY p.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var playlist models.Playlist
		if err := rows.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name, &playlist.Description,
			&playlist.CreatedAt, &playlist.UpdatedAt, &playlist.VideoIDs); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	return playlists, nil
}

// Update renames a playlist and/or replaces its description.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlists
        SET name = $2, description = $3, updated_at = $4
        WHERE id = $1
    `, playlist.ID, playlist.Name, playlist.Description, playlist.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a playlist and its membership rows.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM playlist_videos WHERE playlist_id = $1`, id); err != nil {
			return fmt.Errorf("delete playlist membership: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete playlist: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// AddVideo appends a video to the end of the playlist. ErrConflict when the
// video is already a member.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, position)
        VALUES ($1, $2, (
            SELECT COALESCE(MAX(position), 0) + 1
            FROM playlist_videos
            WHERE playlist_id = $1
        ))
    `, playlistID, videoID)
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
		return fmt.Errorf("insert playlist video: %w", err)
	}

	return nil
}

// RemoveVideo removes a video from the playlist.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("delete playlist video: %w", err)
	}

	return nil
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)

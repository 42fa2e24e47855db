package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create persists a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// FindByID fetches a comment by primary key.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, video_id, owner_id, content, created_at, updated_at
        FROM comments
        WHERE id = $1
    `, id)

	var comment models.Comment
	if err := row.Scan(&comment.ID, &comment.VideoID, &comment.OwnerID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}

	return comment, nil
}

// Update replaces a comment's content.
func (r *PostgresCommentRepository) Update(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE comments
        SET content = $2, updated_at = $3
        WHERE id = $1
    `, comment.ID, comment.Content, comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a comment and any likes referencing it.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListForVideo assembles the comment page projection: newest-first comments
// annotated with like counts, the viewer's like flag, and a reduced owner.
// The total is counted before the page query so it stays correct even when
// the requested offset lands past the last row.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID, viewerID string, page, limit int) (models.CommentPage, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.CommentPage{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var result models.CommentPage
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM comments WHERE video_id = $1
    `, videoID).Scan(&result.Total); err != nil {
		return models.CommentPage{}, fmt.Errorf("count comments: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.content, c.created_at,
            u.username, u.full_name, u.avatar_url,
            (SELECT COUNT(*) FROM likes l WHERE l.comment_id = c.id) AS likes_count,
            EXISTS (SELECT 1 FROM likes l WHERE l.comment_id = c.id AND l.liked_by_id = $2) AS is_liked
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
        OFFSET $3 LIMIT $4
    `, videoID, viewerID, (page-1)*limit, limit)
	if err != nil {
		return models.CommentPage{}, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var view models.CommentView
		if err := rows.Scan(&view.ID, &view.Content, &view.CreatedAt,
			&view.Owner.Username, &view.Owner.FullName, &view.Owner.AvatarURL,
			&view.LikesCount, &view.IsLiked); err != nil {
			return models.CommentPage{}, fmt.Errorf("scan comment: %w", err)
		}
		result.Comments = append(result.Comments, view)
	}

	if err := rows.Err(); err != nil {
		return models.CommentPage{}, fmt.Errorf("iterate comments: %w", err)
	}

	return result, nil
}

var _ CommentRepository = (*PostgresCommentRepository)(nil)

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

var likeTargetColumns = map[models.LikeTargetKind]string{
	models.LikeTargetVideo:   "video_id",
	models.LikeTargetComment: "comment_id",
	models.LikeTargetTweet:   "tweet_id",
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the like state for the (actor, target) pair and reports the
// post-transition state. Delete-then-insert inside a transaction, combined
// with the partial unique indexes on (liked_by_id, target), keeps the pair
// single-rowed even when duplicate toggles race.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, target models.LikeTarget, likedByID, likedByUsername string) (bool, error) {
	column, ok := likeTargetColumns[target.Kind]
	if !ok {
		return false, fmt.Errorf("unknown like target kind %q", target.Kind)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var liked bool
	err = crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM likes WHERE %s = $1 AND liked_by_id = $2`, column),
			target.ID, likedByID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}

		if tag.RowsAffected() > 0 {
			liked = false
			return nil
		}

		_, err = tx.Exec(ctx,
			fmt.Sprintf(`
                INSERT INTO likes (id, %s, liked_by_id, liked_by_username, created_at)
                VALUES ($1, $2, $3, $4, $5)
                ON CONFLICT DO NOTHING
            `, column),
			uuid.NewString(), target.ID, likedByID, likedByUsername, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert like: %w", err)
		}

		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return liked, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)

package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// LikeRepository toggles like state per (actor, target) pair. Toggle is
// atomic: a uniqueness constraint plus a store-level transaction guarantee at
// most one like per pair even under concurrent duplicate toggles.
type LikeRepository interface {
	Toggle(ctx context.Context, target models.LikeTarget, likedByID, likedByUsername string) (bool, error)
}

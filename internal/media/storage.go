package media

import (
	"context"
	"errors"
	"io"
)

// ErrStorageUnavailable indicates no object storage backend is configured.
var ErrStorageUnavailable = errors.New("media storage unavailable")

// ObjectStorage persists and removes media objects in external storage.
type ObjectStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

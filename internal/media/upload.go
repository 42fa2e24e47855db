package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
)

// StoredObject identifies an uploaded media object: the public URL handed to
// clients and the storage key used to delete it later.
type StoredObject struct {
	URL string
	Key string
}

// Store stages the provided content to a local temporary file, pushes it to
// object storage under keyPrefix/filename, and removes the staging file on
// every path.
func Store(ctx context.Context, storage ObjectStorage, keyPrefix, filename string, src io.Reader) (StoredObject, error) {
	if storage == nil {
		return StoredObject{}, ErrStorageUnavailable
	}

	key := path.Join(keyPrefix, filename)
	if key == "" || filename == "" {
		return StoredObject{}, fmt.Errorf("media store: empty object key")
	}

	staging, err := os.CreateTemp("", "playtube-upload-*")
	if err != nil {
		return StoredObject{}, fmt.Errorf("create staging file: %w", err)
	}
	defer func() {
		staging.Close()
		os.Remove(staging.Name())
	}()

	if _, err := io.Copy(staging, src); err != nil {
		return StoredObject{}, fmt.Errorf("stage upload: %w", err)
	}

	if _, err := staging.Seek(0, io.SeekStart); err != nil {
		return StoredObject{}, fmt.Errorf("rewind staging file: %w", err)
	}

	location, err := storage.Save(ctx, key, staging)
	if err != nil {
		return StoredObject{}, fmt.Errorf("push to object storage: %w", err)
	}

	return StoredObject{URL: location, Key: key}, nil
}

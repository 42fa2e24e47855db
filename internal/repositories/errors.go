package repositories

import "errors"

var (
	// ErrNotFound indicates no user, video, comment, tweet, or playlist row
	// matched the lookup. Handlers translate it to a 404.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write hit a uniqueness constraint, such as a
	// duplicate username or email. Handlers translate it to a 409.
	ErrConflict = errors.New("record conflict")
)

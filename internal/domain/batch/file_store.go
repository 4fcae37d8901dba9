package batch

import "context"

// FileStore archives uploaded deduction sheets so the processor can fetch
// them by key. Backed by object storage (the MongoDB file archive in this
// deployment).
type FileStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// ErrFileNotFound indicates a missing archived sheet
type ErrFileNotFound struct {
	Key string
}

func (e ErrFileNotFound) Error() string {
	return "archived sheet not found: " + e.Key
}

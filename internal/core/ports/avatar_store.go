package ports

import (
	"context"
	"io"
)

// AvatarStore persists avatar image files. It is driven exclusively by
// the user lifecycle; there is no independent asset lifecycle.
type AvatarStore interface {
	// Store validates the actual content (JPEG/PNG, sniffed from the
	// bytes, never from the filename) and writes it under a generated
	// collision-free reference. Rejects with domain.ErrUnsupportedFormat.
	Store(ctx context.Context, data []byte, originalName string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	// Delete is idempotent: a missing file is not an error.
	Delete(ctx context.Context, ref string) error
}

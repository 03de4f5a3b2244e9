package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// AvatarStore layers avatar semantics over an ObjectStorage backend:
// content sniffing, collision-free naming, idempotent delete.
type AvatarStore struct {
	backend ObjectStorage
}

func NewAvatarStore(backend ObjectStorage) *AvatarStore {
	return &AvatarStore{backend: backend}
}

// Store sniffs the real content type from the bytes and rejects anything
// but JPEG and PNG; the filename extension is never consulted. The
// generated reference is avatar_<unixmillis>_<entropy>_<original name>,
// so two uploads of the same file never collide.
func (s *AvatarStore) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrUnsupportedFormat
	}

	mt := mimetype.Detect(data)
	switch mt.String() {
	case "image/jpeg", "image/png":
	default:
		return "", domain.ErrUnsupportedFormat
	}

	ref := fmt.Sprintf("avatar_%d_%s_%s", time.Now().UnixMilli(), uuid.NewString()[:8], sanitizeName(originalName))
	if err := s.backend.Put(ctx, ref, bytes.NewReader(data), int64(len(data)), mt.String()); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return ref, nil
}

func (s *AvatarStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, ref)
}

// Delete is idempotent; the backends already treat a missing object as
// a successful delete.
func (s *AvatarStore) Delete(ctx context.Context, ref string) error {
	return s.backend.Delete(ctx, ref)
}

// sanitizeName strips path components and anything outside a small safe
// character set from the uploaded filename.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		out = "upload"
	}
	return out
}

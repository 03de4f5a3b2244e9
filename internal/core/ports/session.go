package ports

import (
	"context"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// SessionManager keeps session state server-side; the client only ever
// holds the opaque token returned by Create.
type SessionManager interface {
	// Create opens a session and returns its token. A nil identity
	// creates an anonymous session (used to park flashes for visitors).
	Create(ctx context.Context, identity *domain.Identity) (string, error)
	// Resolve returns the state behind a token, or domain.ErrUnauthenticated
	// when the token is absent, forged, or expired.
	Resolve(ctx context.Context, token string) (*domain.SessionState, error)
	Destroy(ctx context.Context, token string) error
	SetFlash(ctx context.Context, token string, flash domain.Flash) error
	// PopFlash reads and clears the flash. Exactly-once: a second call
	// returns nil even if the first caller failed downstream.
	PopFlash(ctx context.Context, token string) (*domain.Flash, error)
}

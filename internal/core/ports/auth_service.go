package ports

import (
	"context"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// RegisterInput is the self-service registration payload. Image carries
// the raw upload bytes; the content type is sniffed, not trusted.
type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	Image     []byte
	ImageName string
}

type AuthService interface {
	// Register creates a non-admin account. Invalid input returns a
	// *domain.ValidationError with no side effects; a duplicate email
	// returns domain.ErrEmailTaken with the uploaded asset cleaned up.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login verifies credentials and opens an authenticated session,
	// returning its token alongside the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Logout destroys the session. Cleanup failure is reported in logs
	// only; the caller always proceeds to the logged-out outcome.
	Logout(ctx context.Context, token string) error
}

package ports

import (
	"context"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// AddUserInput is the admin "add user" payload.
type AddUserInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	Image     []byte
	ImageName string
	IsAdmin   bool
}

// UpdateUserInput carries partial-update semantics: an empty Password
// keeps the stored hash, a nil Image keeps the stored avatar. Absent
// optional field means no change, never a clear.
type UpdateUserInput struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Password  string
	Image     []byte
	ImageName string
	IsAdmin   bool
}

// UserService implements the admin-side user lifecycle.
type UserService interface {
	Add(ctx context.Context, input AddUserInput) (*domain.User, error)
	Update(ctx context.Context, input UpdateUserInput) (*domain.User, error)
	// Delete removes the record and cascades to the avatar asset.
	// Asset cleanup failure does not block record deletion.
	Delete(ctx context.Context, id string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

package ports

import (
	"context"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// UserRepository defines the interface for user record persistence.
// Email is the unique login key; Create and Update report duplicates
// with domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
}

package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userdesk/user-portal/internal/api/metrics"
	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
)

// UserService implements the admin-side user lifecycle: add, update,
// delete, list. Mutations follow the same validate → hash → asset →
// record pipeline as registration.
type UserService struct {
	users   ports.UserRepository
	avatars ports.AvatarStore
	logger  zerolog.Logger
}

func NewUserService(users ports.UserRepository, avatars ports.AvatarStore, logger zerolog.Logger) *UserService {
	return &UserService{users: users, avatars: avatars, logger: logger}
}

func (s *UserService) Add(ctx context.Context, input ports.AddUserInput) (*domain.User, error) {
	form := userForm{Name: input.Name, Email: input.Email, Phone: input.Phone, Password: input.Password}
	if fields := validateUserForm(form, true, true, len(input.Image) > 0); len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	user, err := createUser(ctx, s.users, s.avatars, s.logger, input.Name, input.Email, input.Phone, input.Password, input.Image, input.ImageName, input.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", user.Email).Bool("admin", user.IsAdmin).Msg("user created")
	return user, nil
}

// Update applies partial-update semantics: an empty password keeps the
// stored hash and a missing image keeps the stored avatar. With a new
// image the ordering is store new → write record → best-effort delete
// old, so the record never references a file that has been removed.
func (s *UserService) Update(ctx context.Context, input ports.UpdateUserInput) (*domain.User, error) {
	form := userForm{Name: input.Name, Email: input.Email, Phone: input.Phone, Password: input.Password}
	if fields := validateUserForm(form, false, false, false); len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	existing, err := s.users.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = input.Name
	updated.Email = input.Email
	updated.Phone = input.Phone
	updated.IsAdmin = input.IsAdmin

	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = string(hash)
	}

	oldRef := ""
	if len(input.Image) > 0 {
		ref, err := s.avatars.Store(ctx, input.Image, input.ImageName)
		if err != nil {
			if err == domain.ErrUnsupportedFormat {
				return nil, &domain.ValidationError{Fields: map[string]string{"image": "Image must be in JPG or PNG format"}}
			}
			return nil, err
		}
		oldRef = existing.AvatarRef
		updated.AvatarRef = ref
	}

	result, err := s.users.Update(ctx, input.ID, &updated)
	if err != nil {
		if updated.AvatarRef != existing.AvatarRef {
			if cleanupErr := s.avatars.Delete(ctx, updated.AvatarRef); cleanupErr != nil {
				metrics.AvatarCleanupFailures.Inc()
				s.logger.Warn().Err(cleanupErr).Str("avatar", updated.AvatarRef).Msg("orphaned avatar after failed update")
			}
		}
		return nil, err
	}

	if oldRef != "" && oldRef != result.AvatarRef {
		if err := s.avatars.Delete(ctx, oldRef); err != nil {
			metrics.AvatarCleanupFailures.Inc()
			s.logger.Warn().Err(err).Str("avatar", oldRef).Msg("failed to delete replaced avatar")
		}
	}

	s.logger.Info().Str("id", result.ID).Str("email", result.Email).Msg("user updated")
	return result, nil
}

// Delete removes the record, then best-effort removes the avatar. Asset
// cleanup failure is reported but never blocks the record deletion.
func (s *UserService) Delete(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.AvatarRef != "" {
		if err := s.avatars.Delete(ctx, user.AvatarRef); err != nil {
			metrics.AvatarCleanupFailures.Inc()
			s.logger.Warn().Err(err).Str("avatar", user.AvatarRef).Str("id", id).Msg("failed to delete avatar of removed user")
		}
	}

	s.logger.Info().Str("id", id).Str("email", user.Email).Msg("user deleted")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.ListAll(ctx)
}

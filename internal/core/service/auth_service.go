package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userdesk/user-portal/internal/api/metrics"
	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
)

// AuthService implements registration, login and logout.
type AuthService struct {
	users    ports.UserRepository
	avatars  ports.AvatarStore
	sessions ports.SessionManager
	logger   zerolog.Logger
}

func NewAuthService(users ports.UserRepository, avatars ports.AvatarStore, sessions ports.SessionManager, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, avatars: avatars, sessions: sessions, logger: logger}
}

// Register validates the form, hashes the password, stores the avatar and
// creates the record with IsAdmin=false. If the record insert fails the
// just-stored avatar is deleted again so a rejected registration leaves
// no orphaned file behind.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	form := userForm{Name: input.Name, Email: input.Email, Phone: input.Phone, Password: input.Password}
	if fields := validateUserForm(form, true, true, len(input.Image) > 0); len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	user, err := createUser(ctx, s.users, s.avatars, s.logger, input.Name, input.Email, input.Phone, input.Password, input.Image, input.ImageName, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", user.Email).Msg("user registered")
	return user, nil
}

// Login looks the account up by email and verifies the password against
// the stored bcrypt hash. On success an authenticated session is created
// and its token returned; on any failure no session exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, &domain.Identity{
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("email", user.Email).Bool("admin", user.IsAdmin).Msg("user logged in")
	return token, user, nil
}

// Logout destroys the session unconditionally. Destruction failure is
// logged but never surfaced: the user-visible outcome is always
// logged-out, so a broken store cannot leave anyone stuck authenticated.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("session destroy failed")
	}
	return nil
}

// createUser is the shared hash → store asset → insert record pipeline
// used by registration and the admin add flow. The avatar is stored
// before the insert and compensated away if the insert fails.
func createUser(ctx context.Context, users ports.UserRepository, avatars ports.AvatarStore, logger zerolog.Logger,
	name, email, phone, password string, image []byte, imageName string, isAdmin bool) (*domain.User, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	ref, err := avatars.Store(ctx, image, imageName)
	if err != nil {
		if err == domain.ErrUnsupportedFormat {
			return nil, &domain.ValidationError{Fields: map[string]string{"image": "Image must be in JPG or PNG format"}}
		}
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		AvatarRef:    ref,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := users.Create(ctx, user)
	if err != nil {
		if cleanupErr := avatars.Delete(ctx, ref); cleanupErr != nil {
			metrics.AvatarCleanupFailures.Inc()
			logger.Warn().Err(cleanupErr).Str("avatar", ref).Msg("orphaned avatar after failed create")
		}
		return nil, err
	}
	return created, nil
}

package domain

import (
	"errors"
	"time"
)

// User models one account. The credential store owns the canonical record;
// the physical avatar file lives in the asset store and is addressed by
// AvatarRef. Every user has exactly one avatar after creation.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	AvatarRef    string    `json:"avatar"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrUnauthenticated = errors.New("not authenticated")
var ErrUnsupportedFormat = errors.New("image must be in JPG or PNG format")

// ValidationError carries per-field messages for form redisplay.
// No state has changed when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "please fix the errors below"
}

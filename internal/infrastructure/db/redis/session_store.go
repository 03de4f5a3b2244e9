package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/infrastructure/session"
)

// SessionStore keeps session state server-side in Redis.
// Key format: session:<id> for the state, session:<id>:flash for the
// one-shot flash. Both expire with the token TTL.
type SessionStore struct {
	client *redis.Client
	codec  *session.TokenCodec
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client, codec *session.TokenCodec) *SessionStore {
	return &SessionStore{client: client, codec: codec}
}

// Create opens a session and returns its signed token. A nil identity
// creates an anonymous session so visitors can carry a flash.
func (s *SessionStore) Create(ctx context.Context, identity *domain.Identity) (string, error) {
	state := domain.SessionState{}
	if identity != nil {
		state = domain.SessionState{
			Authenticated: true,
			Email:         identity.Email,
			Name:          identity.Name,
			IsAdmin:       identity.IsAdmin,
		}
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	sid := uuid.NewString()
	if err := s.client.Set(ctx, s.stateKey(sid), payload, s.codec.TTL()).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return s.codec.Sign(sid)
}

// Resolve maps a token back to its server-side state. A missing, forged
// or expired token resolves to ErrUnauthenticated, never to an error the
// client could distinguish.
func (s *SessionStore) Resolve(ctx context.Context, token string) (*domain.SessionState, error) {
	sid, err := s.codec.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	payload, err := s.client.Get(ctx, s.stateKey(sid)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}

func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	sid, err := s.codec.Parse(token)
	if err != nil {
		return nil // nothing to destroy
	}
	if err := s.client.Del(ctx, s.stateKey(sid), s.flashKey(sid)).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *SessionStore) SetFlash(ctx context.Context, token string, flash domain.Flash) error {
	sid, err := s.codec.Parse(token)
	if err != nil {
		return domain.ErrUnauthenticated
	}

	payload, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("marshal flash: %w", err)
	}
	if err := s.client.Set(ctx, s.flashKey(sid), payload, s.codec.TTL()).Err(); err != nil {
		return fmt.Errorf("store flash: %w", err)
	}
	return nil
}

// PopFlash reads and clears the flash in one round-trip. GETDEL makes
// the read-clears-it contract atomic: no two readers ever both see it.
func (s *SessionStore) PopFlash(ctx context.Context, token string) (*domain.Flash, error) {
	sid, err := s.codec.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	payload, err := s.client.GetDel(ctx, s.flashKey(sid)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop flash: %w", err)
	}

	var flash domain.Flash
	if err := json.Unmarshal(payload, &flash); err != nil {
		return nil, fmt.Errorf("decode flash: %w", err)
	}
	return &flash, nil
}

func (s *SessionStore) stateKey(sid string) string {
	return "session:" + sid
}

func (s *SessionStore) flashKey(sid string) string {
	return "session:" + sid + ":flash"
}

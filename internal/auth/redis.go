package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	apperrors "github.com/saasfoundry/billingd/internal/errors"
)

const sessionKeyPrefix = "session:"

// sessionRecord is the JSON document stored per session token
type sessionRecord struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisSessions resolves sessions stored in Redis by the auth service
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessions creates a Redis-backed session store
func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

// Resolve looks up a session token. Unknown or expired tokens return
// (nil, nil, nil) rather than an error.
func (s *RedisSessions) Resolve(ctx context.Context, token string) (*Session, *User, error) {
	if token == "" {
		return nil, nil, nil
	}

	raw, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperrors.SessionError{Operation: "resolve", Err: err}
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, nil, apperrors.SessionError{Operation: "decode", Err: err}
	}

	sess := &Session{Token: token, CreatedAt: rec.CreatedAt}
	user := &User{ID: rec.UserID, Email: rec.Email}
	return sess, user, nil
}

// Create mints a new session for a user and returns the opaque token.
// Used by the upstream auth flow and by tests.
func (s *RedisSessions) Create(ctx context.Context, user User) (string, error) {
	token := uuid.NewString()
	rec := sessionRecord{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", apperrors.SessionError{Operation: "encode", Err: err}
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", apperrors.SessionError{Operation: "create", Err: err}
	}

	return token, nil
}

// Destroy removes a session token
func (s *RedisSessions) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return apperrors.SessionError{Operation: "destroy", Err: err}
	}
	return nil
}

// Health checks connectivity to the session backend
func (s *RedisSessions) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

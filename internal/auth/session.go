package auth

import (
	"context"
	"time"
)

// User is the application identity attached to a session.
// NOTE: Do not place credentials or raw tokens here.
type User struct {
	ID    string `json:"user_id"`
	Email string `json:"email"`
}

// Session is an authenticated browser session resolved from an opaque
// cookie token. Sessions are issued by the upstream auth service; this
// service only reads them.
type Session struct {
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResolver resolves an opaque session token to a session and
// its user. A missing or expired token resolves to (nil, nil, nil).
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*Session, *User, error)
}

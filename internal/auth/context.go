package auth

import (
	"context"
)

type userKeyType struct{}

var userKey = userKeyType{}

// WithUser attaches the authenticated user to the context
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom retrieves the authenticated user from the context (nil if absent)
func UserFrom(ctx context.Context) *User {
	v := ctx.Value(userKey)
	if v == nil {
		return nil
	}
	u, _ := v.(*User)
	return u
}

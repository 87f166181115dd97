package authsvc

import (
	"context"
	"errors"
)

type contextKey string

const (
	UserIDContextKey     contextKey = "UserID"
	AuthHeaderContextKey contextKey = "AuthHeader"
)

// UserIDFromContext returns the username attached by the auth gate.
func UserIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(UserIDContextKey).(string)
	if !ok || id == "" {
		return "", ErrUserIDContextMissing
	}
	return id, nil
}

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrAuthHeaderMissing    = errors.New("authorization header is missing or malformed")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserIDContextMissing = errors.New("user ID was not passed through the context")
)

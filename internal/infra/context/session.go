package context

import (
	"context"

	"github.com/mkrupp/geocheckin/internal/domain"
)

type contextKey string

const (
	contextKeySessionToken = contextKey("sessionToken")
	contextKeyUser         = contextKey("user")
)

// SessionFromContext extracts the session token and its user from the context.
// Returns false if the request was not authorized by a session.
func SessionFromContext(ctx context.Context) (string, *domain.User, bool) {
	token, ok := ctx.Value(contextKeySessionToken).(string)
	if !ok {
		return "", nil, false
	}

	user, ok := ctx.Value(contextKeyUser).(*domain.User)
	if !ok {
		return "", nil, false
	}

	return token, user, true
}

// WithSession creates a new context carrying the validated session token and
// the user it belongs to.
func WithSession(ctx context.Context, token string, user *domain.User) context.Context {
	ctx = context.WithValue(ctx, contextKeySessionToken, token)

	return context.WithValue(ctx, contextKeyUser, user)
}

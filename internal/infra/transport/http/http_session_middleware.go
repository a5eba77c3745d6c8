package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/mkrupp/geocheckin/internal/domain"
	context_ "github.com/mkrupp/geocheckin/internal/infra/context"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
)

// SessionCookieConfig describes the cookie carrying the session token.
type SessionCookieConfig struct {
	// Name is the cookie name
	Name string `env:"SESSION_COOKIE_NAME" default:"session-id"`
	// MaxAge is the cookie lifetime in seconds
	MaxAge int `env:"SESSION_COOKIE_MAX_AGE" default:"900"`
}

// NewCookie returns the cookie handing token to the client.
func (c SessionCookieConfig) NewCookie(token string) *http.Cookie {
	//nolint:exhaustruct
	return &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   c.MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionValidator resolves a session token to the user holding it.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.User, error)
}

// SessionMiddleware creates middleware that requires a valid session cookie.
// Requests without one are rejected with 401. On success the token and its
// user are added to the request context.
func SessionMiddleware(
	next http.Handler,
	sessions SessionValidator,
	cookie SessionCookieConfig,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		c, err := r.Cookie(cookie.Name)
		if err != nil && !errors.Is(err, http.ErrNoCookie) {
			WriteError(w, r, log, err)

			return
		} else if err == nil {
			token = c.Value
		}

		user, err := sessions.Validate(r.Context(), token)
		if err != nil {
			WriteError(w, r, log, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithSession(r.Context(), token, user)))
	})
}

package authsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	http_ "github.com/mkrupp/geocheckin/internal/infra/transport/http"
)

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for user registration and login.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
	cookie  http_.SessionCookieConfig
}

// NewHTTPTransport creates a new HTTPTransport instance.
// Logins hand out the session token in the cookie described by cookie.
func NewHTTPTransport(authSvc *AuthService, cookie http_.SessionCookieConfig) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cookie:  cookie,
	}
}

// RegisterRoutes sets up routes for the auth service endpoints:
// - POST /api/register: Register a new user
// - POST /api/login: Login and get a session cookie.
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle("POST /api/register", http.HandlerFunc(ht.HandleRegister))
	rt.Handle("POST /api/login", http.HandlerFunc(ht.HandleLogin))
}

var _ http_.RouteRegistrar = (*HTTPTransport)(nil)

func decodeCredentials(r *http.Request) (domain.CredentialsRequest, error) {
	var req domain.CredentialsRequest

	err := http_.DecodeBody(r, &req, func(form url.Values) error {
		req.Email = form.Get("email")
		req.Password = form.Get("password")

		return nil
	})

	return req, err
}

// HandleRegister processes user registration requests.
// Expects email and password as JSON or form fields.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := ht.handleRegister(w, r); err != nil {
		http_.WriteError(w, r, ht.log, err)
	}
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	req, err := decodeCredentials(r)
	if err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	log = log.With(logging.Group("user", "email", req.Email))

	u, err := ht.authSvc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, domain.NewUserResponse(u)); err != nil {
		log.ErrorContext(r.Context(), "write response failed", "error", err)
	}

	return nil
}

// HandleLogin processes user login requests.
// Expects email and password as JSON or form fields.
// Sets the session cookie on successful login.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := ht.handleLogin(w, r); err != nil {
		http_.WriteError(w, r, ht.log, err)
	}
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	req, err := decodeCredentials(r)
	if err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	log = log.With(logging.Group("user", "email", req.Email))

	u, token, err := ht.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return fmt.Errorf("login user: %w", err)
	}

	http.SetCookie(w, ht.cookie.NewCookie(token))

	resp := domain.LoginResponse{Status: domain.LoginStatus, User: domain.NewUserResponse(u)}
	if err := http_.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.ErrorContext(r.Context(), "write response failed", "error", err)
	}

	return nil
}

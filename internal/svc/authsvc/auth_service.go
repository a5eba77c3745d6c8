package authsvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	Password PasswordConfig
}

// SessionIssuer starts a session for a user and returns its token.
type SessionIssuer interface {
	Issue(ctx context.Context, userID int64) (string, error)
}

// AuthService provides user registration and login.
type AuthService struct {
	Store    store.Handle
	UserRepo user.RepositoryFactory
	Sessions SessionIssuer
	Hasher   PasswordHasher
	Log      logging.Logger
}

// NewAuthService creates a new AuthService hashing passwords with bcrypt.
func NewAuthService(
	st store.Handle,
	userRepo user.RepositoryFactory,
	sessions SessionIssuer,
	cfg AuthConfig,
) *AuthService {
	return &AuthService{
		Store:    st,
		UserRepo: userRepo,
		Sessions: sessions,
		Hasher:   NewBcryptPasswordHasher(cfg.Password),
		Log:      logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// Register creates a new user account with the given email and password.
// The password is hashed before storage.
// Returns ErrUserAlreadyExists if the email is already taken.
func (s *AuthService) Register(ctx context.Context, email, password string) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "email", email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	digest, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var u *domain.User

	if err := s.Store.WithTx(ctx, func(ctx context.Context, tx store.DBTX) error {
		var err error

		u, err = s.UserRepo(tx).CreateUser(ctx, email, digest)

		return err
	}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	log = log.With(logging.Group("user", "id", u.ID))

	return u, nil
}

// Login authenticates a user and starts a new session.
// Returns the user, including the new token in its active sessions, and the token.
func (s *AuthService) Login(ctx context.Context, email, password string) (_ *domain.User, _ string, err error) {
	log := s.Log.With(logging.Group("user", "email", email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	if email == "" || password == "" {
		return nil, "", domain.ErrMissingCredentials
	}

	users := s.UserRepo(s.Store.DB())

	// Authenticate user
	u, ok, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, "", domain.ErrUserNotFound
	}

	match, err := s.Hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("verify password: %w", err)
	} else if !match {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.Sessions.Issue(ctx, u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session: %w", err)
	}

	// Reload so the user reflects the new session
	u, ok, err = users.GetUserByID(ctx, u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("reload user: %w", err)
	} else if !ok {
		return nil, "", domain.ErrUserNotFound
	}

	return u, token, nil
}

package sessionsvc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/user"
)

// SessionService issues and validates session tokens. A user may hold any
// number of tokens and tokens never expire.
type SessionService struct {
	Store    store.Handle
	UserRepo user.RepositoryFactory
	Log      logging.Logger
}

// NewSessionService creates a new SessionService on the given storage handle.
func NewSessionService(st store.Handle, userRepo user.RepositoryFactory) *SessionService {
	return &SessionService{
		Store:    st,
		UserRepo: userRepo,
		Log:      logging.GetLogger("svc.sessionsvc.session_service"),
	}
}

// Issue generates a random token, appends it to the user's active sessions and returns it.
func (s *SessionService) Issue(ctx context.Context, userID int64) (_ string, err error) {
	log := s.Log.With(logging.Group("user", "id", userID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "issue session failed", "error", err)
		} else {
			log.DebugContext(ctx, "session issued")
		}
	}()

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token := id.String()

	if err := s.Store.WithTx(ctx, func(ctx context.Context, tx store.DBTX) error {
		return s.UserRepo(tx).AddSession(ctx, userID, token)
	}); err != nil {
		return "", fmt.Errorf("add session: %w", err)
	}

	return token, nil
}

// Validate returns the user holding token.
// Returns ErrNoSession for an empty token and ErrInvalidSession if no user holds it.
func (s *SessionService) Validate(ctx context.Context, token string) (_ *domain.User, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "validate session failed", "error", err)
		} else {
			log.DebugContext(ctx, "session validated")
		}
	}()

	if token == "" {
		return nil, domain.ErrNoSession
	}

	u, ok, err := s.UserRepo(s.Store.DB()).GetUserBySession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, domain.ErrInvalidSession
	}

	log = log.With(logging.Group("user", "id", u.ID))

	return u, nil
}

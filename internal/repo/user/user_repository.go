package user

import (
	"context"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/repo/store"
)

// Repository defines the interface for user data persistence.
// Returned users carry their active sessions and visit history.
type Repository interface {
	// CreateUser adds a new user to the repository.
	// Returns ErrUserAlreadyExists if the email is already taken.
	CreateUser(ctx context.Context, email string, passwordHash []byte) (*domain.User, error)

	// GetUserByEmail retrieves a user by their email.
	// Returns the user and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, bool, error)

	// GetUserByID retrieves a user by their id.
	GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error)

	// GetUserBySession retrieves the user holding the given session token.
	GetUserBySession(ctx context.Context, token string) (*domain.User, bool, error)

	// AddSession appends a session token to the user's active sessions.
	AddSession(ctx context.Context, userID int64, token string) error

	// AddVisit appends a visit to the user's history.
	AddVisit(ctx context.Context, userID int64, visit domain.Visit) error
}

// RepositoryFactory binds a Repository to a database handle, which may be a
// transaction.
type RepositoryFactory func(db store.DBTX) Repository

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/repo/store"
)

// SQLiteUserRepository implements Repository using SQLite as the storage backend.
type SQLiteUserRepository struct {
	db store.DBTX
}

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepositoryFactory returns a RepositoryFactory producing SQLiteUserRepository values.
func SQLiteUserRepositoryFactory() RepositoryFactory {
	return func(db store.DBTX) Repository {
		return NewSQLiteUserRepository(db)
	}
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository bound to db.
func NewSQLiteUserRepository(db store.DBTX) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// CreateUser implements Repository.CreateUser using SQLite.
func (r *SQLiteUserRepository) CreateUser(
	ctx context.Context,
	email string,
	passwordHash []byte,
) (*domain.User, error) {
	now := time.Now().Unix()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)",
		email,
		passwordHash,
		now,
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
				fallthrough
			case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			default:
				break
			}
		}

		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &domain.User{
		ID:             id,
		Email:          email,
		PasswordHash:   passwordHash,
		CreatedAt:      now,
		ActiveSessions: []string{},
		VisitHistory:   []domain.Visit{},
	}, nil
}

// GetUserByEmail implements Repository.GetUserByEmail using SQLite.
func (r *SQLiteUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	return r.getUser(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE email = ?",
		email,
	)
}

// GetUserByID implements Repository.GetUserByID using SQLite.
func (r *SQLiteUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	return r.getUser(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE id = ?",
		id,
	)
}

// GetUserBySession implements Repository.GetUserBySession using SQLite.
func (r *SQLiteUserRepository) GetUserBySession(ctx context.Context, token string) (*domain.User, bool, error) {
	return r.getUser(ctx, `
		SELECT u.id, u.email, u.password_hash, u.created_at
		FROM users u JOIN sessions s ON s.user_id = u.id
		WHERE s.token = ?`,
		token,
	)
}

// AddSession implements Repository.AddSession using SQLite.
func (r *SQLiteUserRepository) AddSession(ctx context.Context, userID int64, token string) error {
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)",
		token,
		userID,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// AddVisit implements Repository.AddVisit using SQLite.
func (r *SQLiteUserRepository) AddVisit(ctx context.Context, userID int64, visit domain.Visit) error {
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO visits (user_id, venue_name, longitude, latitude, visited_at) VALUES (?, ?, ?, ?, ?)",
		userID,
		visit.VenueName,
		visit.Location.Longitude,
		visit.Location.Latitude,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}

	return nil
}

func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, arg any) (*domain.User, bool, error) {
	var user domain.User

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	if user.ActiveSessions, err = r.sessions(ctx, user.ID); err != nil {
		return nil, false, err
	}

	if user.VisitHistory, err = r.visits(ctx, user.ID); err != nil {
		return nil, false, err
	}

	return &user, true, nil
}

func (r *SQLiteUserRepository) sessions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT token FROM sessions WHERE user_id = ? ORDER BY rowid",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	tokens := []string{}

	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return tokens, nil
}

func (r *SQLiteUserRepository) visits(ctx context.Context, userID int64) ([]domain.Visit, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT venue_name, longitude, latitude FROM visits WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	visits := []domain.Visit{}

	for rows.Next() {
		var v domain.Visit
		if err := rows.Scan(&v.VenueName, &v.Location.Longitude, &v.Location.Latitude); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}

		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}

	return visits, nil
}

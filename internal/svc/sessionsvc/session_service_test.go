package sessionsvc_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/user"
	"github.com/mkrupp/geocheckin/internal/svc/sessionsvc"
)

var ErrRepoError = errors.New("repository error")

// mockStore implements store.Handle without a database.
type mockStore struct{}

func (mockStore) DB() store.DBTX { return nil }

func (mockStore) WithTx(ctx context.Context, fn store.TxFunc) error {
	return fn(ctx, nil)
}

// mockUserRepository implements the session part of user.Repository for testing.
type mockUserRepository struct {
	user.Repository

	sessions map[string]int64
	err      error
	m        sync.Mutex
}

func (m *mockUserRepository) AddSession(_ context.Context, userID int64, token string) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sessions[token] = userID
	return nil
}

func (m *mockUserRepository) GetUserBySession(_ context.Context, token string) (*domain.User, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}
	id, ok := m.sessions[token]
	if !ok {
		return nil, false, nil
	}
	return &domain.User{ID: id, ActiveSessions: []string{token}}, true, nil
}

func setupTestService(t *testing.T) (*sessionsvc.SessionService, *mockUserRepository) {
	t.Helper()

	repo := &mockUserRepository{sessions: make(map[string]int64)}

	return &sessionsvc.SessionService{
		Store:    mockStore{},
		UserRepo: func(store.DBTX) user.Repository { return repo },
		Log:      logging.GetLogger("test.sessionsvc"),
	}, repo
}

func TestSessionService_Issue(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, 1)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, 1)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second, "tokens must be unique")
	assert.Equal(t, map[string]int64{first: 1, second: 1}, repo.sessions)
}

func TestSessionService_Issue_RepoError(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	repo.err = ErrRepoError

	_, err := svc.Issue(context.Background(), 1)
	require.ErrorIs(t, err, ErrRepoError)
}

func TestSessionService_Validate(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	repo.sessions["known"] = 7

	tests := []struct {
		name    string
		token   string
		repoErr error
		wantID  int64
		wantErr error
	}{
		{
			name:   "known token",
			token:  "known",
			wantID: 7,
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: domain.ErrNoSession,
		},
		{
			name:    "unknown token",
			token:   "unknown",
			wantErr: domain.ErrInvalidSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := svc.Validate(context.Background(), tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestSessionService_ConcurrentLogins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	st, err := store.Open(ctx, store.SQLiteStoreConfig{
		DatabasePath: filepath.Join(t.TempDir(), "sessions.db"),
		BusyTimeout:  5000,
	})
	require.NoError(t, err)
	defer st.Close()

	users := user.SQLiteUserRepositoryFactory()

	u, err := users(st.DB()).CreateUser(ctx, "ann@example.com", []byte("digest"))
	require.NoError(t, err)

	svc := sessionsvc.NewSessionService(st, users)

	const logins = 20

	var (
		wg     sync.WaitGroup
		tokens = make([]string, logins)
		errs   = make([]error, logins)
	)

	for i := range logins {
		wg.Add(1)

		go func() {
			defer wg.Done()
			tokens[i], errs[i] = svc.Issue(ctx, u.ID)
		}()
	}

	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.Validate(ctx, tokens[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, tokens, got.ActiveSessions)

	for _, token := range tokens {
		holder, err := svc.Validate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, holder.ID)
	}
}

package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/geocheckin/internal/repo/store"
)

func openTestStore(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()

	s, err := store.Open(context.Background(), store.SQLiteStoreConfig{
		DatabasePath: path,
		BusyTimeout:  5000,
	})
	require.NoError(t, err)

	return s
}

func countVenues(t *testing.T, s *store.SQLiteStore) int {
	t.Helper()

	var n int
	require.NoError(t, s.DB().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM venues").Scan(&n))

	return n
}

func TestSQLiteStore_Open(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	s := openTestStore(t, path)
	assert.Equal(t, 0, countVenues(t, s))
	require.NoError(t, s.Close())

	// Reopening an already migrated database must succeed.
	s = openTestStore(t, path)
	defer s.Close()

	assert.Equal(t, 0, countVenues(t, s))
}

func TestSQLiteStore_WithTx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "test.db"))
	defer s.Close()

	insert := func(ctx context.Context, tx store.DBTX) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO venues (name, longitude, latitude) VALUES (?, ?, ?)", "cafe", 1.0, 2.0)

		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		require.NoError(t, s.WithTx(ctx, insert))
		assert.Equal(t, 1, countVenues(t, s))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		errBoom := errors.New("boom")

		err := s.WithTx(ctx, func(ctx context.Context, tx store.DBTX) error {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO venues (name, longitude, latitude) VALUES (?, ?, ?)", "bar", 3.0, 4.0); err != nil {
				return err
			}

			return errBoom
		})

		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, 1, countVenues(t, s))
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = s.WithTx(ctx, func(ctx context.Context, tx store.DBTX) error {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO venues (name, longitude, latitude) VALUES (?, ?, ?)", "pub", 5.0, 6.0); err != nil {
					return err
				}

				panic("boom")
			})
		})

		assert.Equal(t, 1, countVenues(t, s))
	})
}

package venue_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/geo"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/venue"
)

var origin = geo.Point{Longitude: -122.4194, Latitude: 37.7749}

func north(meters float64) geo.Point {
	return geo.Point{
		Longitude: origin.Longitude,
		Latitude:  origin.Latitude + meters/(math.Pi*geo.EarthRadiusMeters/180),
	}
}

func east(meters float64) geo.Point {
	degPerMeter := 1 / (math.Pi * geo.EarthRadiusMeters / 180 * math.Cos(origin.Latitude*math.Pi/180))

	return geo.Point{
		Longitude: origin.Longitude + meters*degPerMeter,
		Latitude:  origin.Latitude,
	}
}

func setupTestRepo(t *testing.T) *venue.SQLiteVenueRepository {
	t.Helper()

	s, err := store.Open(context.Background(), store.SQLiteStoreConfig{
		DatabasePath: filepath.Join(t.TempDir(), "venues.db"),
		BusyTimeout:  5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return venue.NewSQLiteVenueRepository(s.DB())
}

func mustCreate(t *testing.T, repo *venue.SQLiteVenueRepository, name string, at geo.Point) *domain.Venue {
	t.Helper()

	v, ok, err := repo.CreateVenue(context.Background(), name, at)
	require.NoError(t, err)
	require.True(t, ok)

	return v
}

func names(venues []domain.Venue) []string {
	out := make([]string, 0, len(venues))
	for _, v := range venues {
		out = append(out, v.Name)
	}

	return out
}

func TestSQLiteVenueRepository_CreateVenue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := setupTestRepo(t)

	v := mustCreate(t, repo, "cafe", origin)
	assert.NotZero(t, v.ID)

	dup, ok, err := repo.CreateVenue(ctx, "cafe", origin)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, dup)

	// Same name at another location is a different venue.
	mustCreate(t, repo, "cafe", north(10))
}

func TestSQLiteVenueRepository_FindNear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := setupTestRepo(t)

	mustCreate(t, repo, "far", north(6000))
	mustCreate(t, repo, "east", east(3000))
	mustCreate(t, repo, "close", north(200))
	mustCreate(t, repo, "corner", geo.Point{Longitude: east(3400).Longitude, Latitude: north(3400).Latitude})
	mustCreate(t, repo, "south", north(-4000))

	got, err := repo.FindNear(ctx, origin, 5000)
	require.NoError(t, err)
	assert.Equal(t, []string{"close", "east", "south", "corner"}, names(got))

	for i, v := range got {
		d := geo.Distance(origin, v.Location)
		assert.LessOrEqual(t, d, 5000.0)

		if i > 0 {
			assert.LessOrEqual(t, geo.Distance(origin, got[i-1].Location), d)
		}
	}

	t.Run("inclusive boundary", func(t *testing.T) {
		exact := geo.Distance(origin, north(200))

		got, err := repo.FindNear(ctx, origin, exact)
		require.NoError(t, err)
		assert.Equal(t, []string{"close"}, names(got))
	})

	t.Run("nothing in range", func(t *testing.T) {
		got, err := repo.FindNear(ctx, geo.Point{Longitude: 10, Latitude: 10}, 5000)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSQLiteVenueRepository_FindNearByName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := setupTestRepo(t)

	mustCreate(t, repo, "cafe", north(2000))
	near := mustCreate(t, repo, "cafe", north(900))
	mustCreate(t, repo, "bar", north(100))

	got, ok, err := repo.FindNearByName(ctx, "cafe", origin, 1000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, near.ID, got.ID)

	_, ok, err = repo.FindNearByName(ctx, "cafe", north(-1500), 1000)
	require.NoError(t, err)
	assert.False(t, ok, "2.4 km away is out of range")

	_, ok, err = repo.FindNearByName(ctx, "pub", origin, 1000)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteVenueRepository_AddVisitor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := setupTestRepo(t)

	v := mustCreate(t, repo, "cafe", origin)

	require.NoError(t, repo.AddVisitor(ctx, v.ID, "ann@example.com"))
	require.NoError(t, repo.AddVisitor(ctx, v.ID, "bob@example.com"))
	require.NoError(t, repo.AddVisitor(ctx, v.ID, "ann@example.com"))

	got, ok, err := repo.FindNearByName(ctx, "cafe", origin, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"ann@example.com", "bob@example.com", "ann@example.com"}, got.VisitorLog)
}

func TestSQLiteVenueRepository_TopVenues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := setupTestRepo(t)

	counts := []struct {
		name     string
		visitors int
	}{
		{"one", 1},
		{"three-a", 3},
		{"five", 5},
		{"three-b", 3},
		{"none", 0},
	}

	for i, c := range counts {
		v := mustCreate(t, repo, c.name, north(float64(i*100)))
		for range c.visitors {
			require.NoError(t, repo.AddVisitor(ctx, v.ID, "u@example.com"))
		}
	}

	got, err := repo.TopVenues(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"five", "three-a", "three-b"}, names(got))
	assert.Equal(t, []int{5, 3, 3}, []int{got[0].VisitorCount(), got[1].VisitorCount(), got[2].VisitorCount()})

	all, err := repo.TopVenues(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"five", "three-a", "three-b", "one", "none"}, names(all))
	assert.Empty(t, all[4].VisitorLog)

	none, err := repo.TopVenues(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

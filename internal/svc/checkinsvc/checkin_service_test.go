package checkinsvc_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/geo"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/user"
	"github.com/mkrupp/geocheckin/internal/repo/venue"
	"github.com/mkrupp/geocheckin/internal/svc/checkinsvc"
	"github.com/mkrupp/geocheckin/internal/svc/sessionsvc"
)

var ErrRepoError = errors.New("repository error")

//nolint:gochecknoglobals
var cafe = geo.Point{Longitude: -73.9857, Latitude: 40.7484}

// north returns the point meters due north of p.
func north(p geo.Point, meters float64) geo.Point {
	return geo.Point{
		Longitude: p.Longitude,
		Latitude:  p.Latitude + meters/(geo.EarthRadiusMeters*math.Pi/180),
	}
}

type fixture struct {
	st       *store.SQLiteStore
	svc      *checkinsvc.CheckInService
	users    user.RepositoryFactory
	venues   venue.RepositoryFactory
	sessions *sessionsvc.SessionService
	venue    *domain.Venue
}

func setup(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()

	st, err := store.Open(ctx, store.SQLiteStoreConfig{
		DatabasePath: filepath.Join(t.TempDir(), "checkin.db"),
		BusyTimeout:  5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	users := user.SQLiteUserRepositoryFactory()
	venues := venue.SQLiteVenueRepositoryFactory()
	sessions := sessionsvc.NewSessionService(st, users)

	v, ok, err := venues(st.DB()).CreateVenue(ctx, "Cafe", cafe)
	require.NoError(t, err)
	require.True(t, ok)

	return &fixture{
		st:       st,
		svc:      checkinsvc.NewCheckInService(st, sessions, users, venues, checkinsvc.CheckInConfig{Radius: 1000}),
		users:    users,
		venues:   venues,
		sessions: sessions,
		venue:    v,
	}
}

func (f *fixture) login(t *testing.T, email string) string {
	t.Helper()

	u, err := f.users(f.st.DB()).CreateUser(context.Background(), email, []byte("digest"))
	require.NoError(t, err)

	token, err := f.sessions.Issue(context.Background(), u.ID)
	require.NoError(t, err)

	return token
}

func (f *fixture) visitors(t *testing.T) []string {
	t.Helper()

	v, ok, err := f.venues(f.st.DB()).FindNearByName(context.Background(), "Cafe", cafe, 1)
	require.NoError(t, err)
	require.True(t, ok)

	return v.VisitorLog
}

func TestCheckInService_CheckIn(t *testing.T) {
	t.Parallel()

	f := setup(t)
	token := f.login(t, "ann@example.com")

	venueLoc := geo.Point{Longitude: -73.98, Latitude: 40.75}

	u, err := f.svc.CheckIn(context.Background(), token, domain.CheckIn{
		VenueName:     "Cafe",
		UserLocation:  north(cafe, 900),
		VenueLocation: venueLoc,
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.Visit{{VenueName: "Cafe", Location: venueLoc}}, u.VisitHistory)
	assert.Equal(t, []string{"ann@example.com"}, f.visitors(t))
}

func TestCheckInService_CheckIn_Rejected(t *testing.T) {
	t.Parallel()

	f := setup(t)
	token := f.login(t, "ann@example.com")

	tests := []struct {
		name    string
		token   string
		ci      domain.CheckIn
		wantErr error
	}{
		{
			name:    "too far away",
			token:   token,
			ci:      domain.CheckIn{VenueName: "Cafe", UserLocation: north(cafe, 2000), VenueLocation: cafe},
			wantErr: domain.ErrVenueNotFound,
		},
		{
			name:    "unknown venue name",
			token:   token,
			ci:      domain.CheckIn{VenueName: "Bar", UserLocation: cafe, VenueLocation: cafe},
			wantErr: domain.ErrVenueNotFound,
		},
		{
			name:    "no session",
			ci:      domain.CheckIn{VenueName: "Cafe", UserLocation: cafe, VenueLocation: cafe},
			wantErr: domain.ErrNoSession,
		},
		{
			name:    "invalid session",
			token:   "forged",
			ci:      domain.CheckIn{VenueName: "Cafe", UserLocation: cafe, VenueLocation: cafe},
			wantErr: domain.ErrInvalidSession,
		},
		{
			name:    "missing venue name",
			token:   token,
			ci:      domain.CheckIn{UserLocation: cafe, VenueLocation: cafe},
			wantErr: domain.ErrMissingVenueName,
		},
		{
			name:    "user latitude out of range",
			token:   token,
			ci:      domain.CheckIn{VenueName: "Cafe", UserLocation: geo.Point{Latitude: 91}, VenueLocation: cafe},
			wantErr: domain.ErrInvalidCoordinates,
		},
		{
			name:  "venue longitude not a number",
			token: token,
			ci: domain.CheckIn{
				VenueName:     "Cafe",
				UserLocation:  cafe,
				VenueLocation: geo.Point{Longitude: math.NaN()},
			},
			wantErr: domain.ErrInvalidCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := f.svc.CheckIn(context.Background(), tt.token, tt.ci)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, u)
		})
	}

	assert.Empty(t, f.visitors(t))

	u, err := f.sessions.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Empty(t, u.VisitHistory)
}

func TestCheckInService_CheckIn_Repeated(t *testing.T) {
	t.Parallel()

	f := setup(t)
	token := f.login(t, "ann@example.com")
	ci := domain.CheckIn{VenueName: "Cafe", UserLocation: cafe, VenueLocation: cafe}

	_, err := f.svc.CheckIn(context.Background(), token, ci)
	require.NoError(t, err)

	u, err := f.svc.CheckIn(context.Background(), token, ci)
	require.NoError(t, err)

	assert.Len(t, u.VisitHistory, 2)
	assert.Equal(t, []string{"ann@example.com", "ann@example.com"}, f.visitors(t))
}

// failingUserRepository fails to record visits.
type failingUserRepository struct {
	user.Repository
}

func (failingUserRepository) AddVisit(context.Context, int64, domain.Visit) error {
	return ErrRepoError
}

func TestCheckInService_CheckIn_RollsBack(t *testing.T) {
	t.Parallel()

	f := setup(t)
	token := f.login(t, "ann@example.com")

	users := f.users
	f.svc.UserRepo = func(db store.DBTX) user.Repository {
		return failingUserRepository{Repository: users(db)}
	}

	_, err := f.svc.CheckIn(context.Background(), token, domain.CheckIn{
		VenueName:     "Cafe",
		UserLocation:  cafe,
		VenueLocation: cafe,
	})
	require.ErrorIs(t, err, domain.ErrCheckInFailed)
	require.ErrorIs(t, err, ErrRepoError)

	assert.Empty(t, f.visitors(t), "visitor must not be recorded without the visit")
}

func TestCheckInService_CheckIn_Concurrent(t *testing.T) {
	t.Parallel()

	f := setup(t)

	tokens := []string{
		f.login(t, "ann@example.com"),
		f.login(t, "bob@example.com"),
		f.login(t, "cat@example.com"),
		f.login(t, "dan@example.com"),
	}

	const perUser = 5

	var (
		wg   sync.WaitGroup
		errs = make(chan error, len(tokens)*perUser)
	)

	for _, token := range tokens {
		for range perUser {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := f.svc.CheckIn(context.Background(), token, domain.CheckIn{
					VenueName:     "Cafe",
					UserLocation:  north(cafe, 500),
					VenueLocation: cafe,
				})
				errs <- err
			}()
		}
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, f.visitors(t), len(tokens)*perUser)

	for _, token := range tokens {
		u, err := f.sessions.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Len(t, u.VisitHistory, perUser)
	}
}

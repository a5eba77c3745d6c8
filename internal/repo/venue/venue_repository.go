package venue

import (
	"context"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/geo"
	"github.com/mkrupp/geocheckin/internal/repo/store"
)

// Repository defines the interface for venue persistence and spatial lookup.
type Repository interface {
	// CreateVenue inserts a venue. It reports false without error when a venue
	// with the same name and location already exists.
	CreateVenue(ctx context.Context, name string, location geo.Point) (*domain.Venue, bool, error)

	// FindNear returns the venues within maxMeters of origin, nearest first,
	// with their visitor logs. The boundary is inclusive.
	FindNear(ctx context.Context, origin geo.Point, maxMeters float64) ([]domain.Venue, error)

	// FindNearByName returns the nearest venue called name within maxMeters of origin.
	// Returns false if there is none.
	FindNearByName(ctx context.Context, name string, origin geo.Point, maxMeters float64) (*domain.Venue, bool, error)

	// AddVisitor appends email to the venue's visitor log.
	AddVisitor(ctx context.Context, venueID int64, email string) error

	// TopVenues returns up to k venues ordered by visitor count descending,
	// ties broken by ascending id.
	TopVenues(ctx context.Context, k int) ([]domain.Venue, error)
}

// RepositoryFactory binds a Repository to a database handle, which may be a
// transaction.
type RepositoryFactory func(db store.DBTX) Repository

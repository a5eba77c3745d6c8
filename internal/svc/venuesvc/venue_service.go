package venuesvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/geo"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/venue"
)

// VenueConfig contains configuration parameters for venue discovery and ranking.
type VenueConfig struct {
	// DiscoveryRadius is how far around the caller venues are listed, in metres
	DiscoveryRadius float64 `env:"DISCOVERY_RADIUS" default:"5000"`

	// PopularLimit is the number of venues in the popularity ranking
	PopularLimit int `env:"POPULAR_LIMIT" default:"3"`
}

// VenueService provides venue discovery, popularity ranking and seeding.
type VenueService struct {
	Config    VenueConfig
	Store     store.Handle
	VenueRepo venue.RepositoryFactory
	Log       logging.Logger
}

// NewVenueService creates a new VenueService.
func NewVenueService(st store.Handle, venueRepo venue.RepositoryFactory, cfg VenueConfig) *VenueService {
	return &VenueService{
		Config:    cfg,
		Store:     st,
		VenueRepo: venueRepo,
		Log:       logging.GetLogger("svc.venuesvc.venue_service"),
	}
}

// NearbyVenues returns the venues within the discovery radius of origin, nearest first.
func (s *VenueService) NearbyVenues(ctx context.Context, origin geo.Point) (_ []domain.Venue, err error) {
	log := s.Log.With(logging.Group("query", "origin", origin.String()))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "nearby venues failed", "error", err)
		} else {
			log.DebugContext(ctx, "nearby venues listed")
		}
	}()

	if err := origin.Validate(); err != nil {
		return nil, errors.Join(domain.ErrInvalidCoordinates, err)
	}

	venues, err := s.VenueRepo(s.Store.DB()).FindNear(ctx, origin, s.Config.DiscoveryRadius)
	if err != nil {
		return nil, fmt.Errorf("find venues: %w", err)
	}

	log = log.With("count", len(venues))

	return venues, nil
}

// NearbyVisitors returns the same venues as NearbyVenues. Callers project
// them with their visitor logs.
func (s *VenueService) NearbyVisitors(ctx context.Context, origin geo.Point) ([]domain.Venue, error) {
	return s.NearbyVenues(ctx, origin)
}

// TopVenues returns the k venues with the most check-ins. Ties go to the
// venue created first. k <= 0 yields no venues.
func (s *VenueService) TopVenues(ctx context.Context, k int) (_ []domain.Venue, err error) {
	log := s.Log.With("k", k)

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "top venues failed", "error", err)
		} else {
			log.DebugContext(ctx, "top venues ranked")
		}
	}()

	venues, err := s.VenueRepo(s.Store.DB()).TopVenues(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("top venues: %w", err)
	}

	return venues, nil
}

// Seed inserts the given venues in one transaction, skipping ones that
// already exist with the same name and location. Returns the number inserted.
func (s *VenueService) Seed(ctx context.Context, seeds []domain.VenueSeed) (_ int, err error) {
	log := s.Log.With("seeds", len(seeds))

	var inserted int

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "seed venues failed", "error", err)
		} else {
			log.InfoContext(ctx, "venues seeded", "inserted", inserted)
		}
	}()

	for i, seed := range seeds {
		if seed.Name == "" {
			return 0, fmt.Errorf("seed %d: %w", i, domain.ErrMissingVenueName)
		}

		if err := seed.Point().Validate(); err != nil {
			return 0, fmt.Errorf("seed %d (%s): %w", i, seed.Name, errors.Join(domain.ErrInvalidCoordinates, err))
		}
	}

	if err := s.Store.WithTx(ctx, func(ctx context.Context, tx store.DBTX) error {
		venues := s.VenueRepo(tx)

		for _, seed := range seeds {
			_, created, err := venues.CreateVenue(ctx, seed.Name, seed.Point())
			if err != nil {
				return fmt.Errorf("create venue %s: %w", seed.Name, err)
			}

			if created {
				inserted++
			}
		}

		return nil
	}); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	return inserted, nil
}

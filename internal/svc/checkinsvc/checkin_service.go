package checkinsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/user"
	"github.com/mkrupp/geocheckin/internal/repo/venue"
)

// CheckInConfig contains configuration parameters for the check-in service.
type CheckInConfig struct {
	// Radius is the furthest a venue may be from the caller, in metres
	Radius float64 `env:"CHECKIN_RADIUS" default:"1000"`
}

// SessionValidator resolves a session token to the user holding it.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.User, error)
}

// CheckInService records users at venues. A check-in appends to both the
// venue's visitor log and the user's visit history, or to neither.
type CheckInService struct {
	Config    CheckInConfig
	Store     store.Handle
	Sessions  SessionValidator
	UserRepo  user.RepositoryFactory
	VenueRepo venue.RepositoryFactory
	Log       logging.Logger
}

// NewCheckInService creates a new CheckInService.
func NewCheckInService(
	st store.Handle,
	sessions SessionValidator,
	userRepo user.RepositoryFactory,
	venueRepo venue.RepositoryFactory,
	cfg CheckInConfig,
) *CheckInService {
	return &CheckInService{
		Config:    cfg,
		Store:     st,
		Sessions:  sessions,
		UserRepo:  userRepo,
		VenueRepo: venueRepo,
		Log:       logging.GetLogger("svc.checkinsvc.checkin_service"),
	}
}

// CheckIn records the holder of token at the nearest venue named ci.VenueName
// within the check-in radius of ci.UserLocation and returns the updated user.
// Returns ErrVenueNotFound if there is no such venue and ErrCheckInFailed if
// the check-in could not be stored.
func (s *CheckInService) CheckIn(ctx context.Context, token string, ci domain.CheckIn) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("checkin",
		"venue", ci.VenueName,
		"at", ci.UserLocation.String(),
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "check-in failed", "error", err)
		} else {
			log.InfoContext(ctx, "checked in")
		}
	}()

	u, err := s.Sessions.Validate(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}

	log = log.With(logging.Group("user", "id", u.ID))

	if err := validate(ci); err != nil {
		return nil, err
	}

	var updated *domain.User

	err = s.Store.WithTx(ctx, func(ctx context.Context, tx store.DBTX) error {
		var (
			users  = s.UserRepo(tx)
			venues = s.VenueRepo(tx)
		)

		v, ok, err := venues.FindNearByName(ctx, ci.VenueName, ci.UserLocation, s.Config.Radius)
		if err != nil {
			return fmt.Errorf("find venue: %w", err)
		} else if !ok {
			return domain.ErrVenueNotFound
		}

		if err := venues.AddVisitor(ctx, v.ID, u.Email); err != nil {
			return fmt.Errorf("add visitor: %w", err)
		}

		visit := domain.Visit{VenueName: ci.VenueName, Location: ci.VenueLocation}
		if err := users.AddVisit(ctx, u.ID, visit); err != nil {
			return fmt.Errorf("add visit: %w", err)
		}

		updated, ok, err = users.GetUserByID(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		} else if !ok {
			return domain.ErrUserNotFound
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrVenueNotFound) {
			return nil, err
		}

		return nil, errors.Join(domain.ErrCheckInFailed, err)
	}

	return updated, nil
}

func validate(ci domain.CheckIn) error {
	if ci.VenueName == "" {
		return domain.ErrMissingVenueName
	}

	if err := ci.UserLocation.Validate(); err != nil {
		return errors.Join(domain.ErrInvalidCoordinates, err)
	}

	if err := ci.VenueLocation.Validate(); err != nil {
		return errors.Join(domain.ErrInvalidCoordinates, err)
	}

	return nil
}

package domain

import (
	"errors"

	"github.com/mkrupp/geocheckin/internal/geo"
)

var (
	// ErrMissingVenueName is returned when a check-in names no venue.
	ErrMissingVenueName = errors.New("missing venue name")
	// ErrInvalidCoordinates is returned when a supplied position is not a valid point.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrCheckInFailed is returned when the check-in could not be recorded on both
	// the venue and the user. Nothing is recorded in that case.
	ErrCheckInFailed = errors.New("check-in failed")
)

// CheckIn is a request to record the caller at a venue.
type CheckIn struct {
	VenueName string
	// UserLocation is where the caller claims to be. The venue must lie within
	// the check-in radius of it.
	UserLocation geo.Point
	// VenueLocation is recorded into the visit history as given.
	VenueLocation geo.Point
}

// CheckInRequest is the wire form of a CheckIn. Coordinates are pointers so
// that a missing one can be told apart from zero.
type CheckInRequest struct {
	VenueName      string   `json:"venueName"`
	UserLongitude  *float64 `json:"userLongitude"`
	UserLatitude   *float64 `json:"userLatitude"`
	VenueLongitude *float64 `json:"venueLongitude"`
	VenueLatitude  *float64 `json:"venueLatitude"`
}

// CheckIn converts the request. Returns ErrInvalidCoordinates if a coordinate is missing.
func (r CheckInRequest) CheckIn() (CheckIn, error) {
	for _, c := range []*float64{r.UserLongitude, r.UserLatitude, r.VenueLongitude, r.VenueLatitude} {
		if c == nil {
			return CheckIn{}, ErrInvalidCoordinates
		}
	}

	return CheckIn{
		VenueName:     r.VenueName,
		UserLocation:  geo.Point{Longitude: *r.UserLongitude, Latitude: *r.UserLatitude},
		VenueLocation: geo.Point{Longitude: *r.VenueLongitude, Latitude: *r.VenueLatitude},
	}, nil
}

// CheckInResponse carries the user after a successful check-in.
type CheckInResponse struct {
	UpdatedUser UserResponse `json:"updatedUser"`
}

package domain

import (
	"errors"

	"github.com/mkrupp/geocheckin/internal/geo"
)

// ErrVenueNotFound is returned when no venue matches a name within the check-in radius.
var ErrVenueNotFound = errors.New("venue not found")

// Venue is a named location that users check in to.
type Venue struct {
	ID         int64
	Name       string
	Location   geo.Point
	VisitorLog []string // Emails of checked-in users, in check-in order, with repeats
}

// VisitorCount is the popularity signal of the venue.
func (v Venue) VisitorCount() int {
	return len(v.VisitorLog)
}

// VenueSeed describes a venue to insert during seeding, in the GeoJSON-like
// layout of the seed files.
type VenueSeed struct {
	Name     string `json:"name"`
	Location struct {
		Coordinates [2]float64 `json:"coordinates"`
	} `json:"location"`
}

// Point returns the seed location.
func (s VenueSeed) Point() geo.Point {
	return geo.Point{Longitude: s.Location.Coordinates[0], Latitude: s.Location.Coordinates[1]}
}

// VenueResponse is the discovery projection of a Venue.
type VenueResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// NearbyVenuesResponse wraps the venues found around a point.
type NearbyVenuesResponse struct {
	Venues []VenueResponse `json:"venues"`
}

// VenueSummary is the ranking projection of a Venue.
type VenueSummary struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Longitude      float64  `json:"longitude"`
	Latitude       float64  `json:"latitude"`
	NumCheckedIn   int      `json:"numCheckedIn"`
	CheckedInUsers []string `json:"checkedInUsers"`
}

// VenueVisitors is the nearby-users projection of a Venue.
type VenueVisitors struct {
	Name           string   `json:"name"`
	Longitude      float64  `json:"longitude"`
	Latitude       float64  `json:"latitude"`
	CheckedInUsers []string `json:"checkedInUsers"`
}

// NewVenueResponse projects v for discovery.
func NewVenueResponse(v Venue) VenueResponse {
	return VenueResponse{
		ID:        v.ID,
		Name:      v.Name,
		Longitude: v.Location.Longitude,
		Latitude:  v.Location.Latitude,
	}
}

// NewVenueSummary projects v for the popularity ranking.
func NewVenueSummary(v Venue) VenueSummary {
	return VenueSummary{
		ID:             v.ID,
		Name:           v.Name,
		Longitude:      v.Location.Longitude,
		Latitude:       v.Location.Latitude,
		NumCheckedIn:   v.VisitorCount(),
		CheckedInUsers: nonNil(v.VisitorLog),
	}
}

// NewVenueVisitors projects v with its visitor log.
func NewVenueVisitors(v Venue) VenueVisitors {
	return VenueVisitors{
		Name:           v.Name,
		Longitude:      v.Location.Longitude,
		Latitude:       v.Location.Latitude,
		CheckedInUsers: nonNil(v.VisitorLog),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

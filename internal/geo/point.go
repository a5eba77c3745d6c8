package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPoint is returned when a coordinate is out of range or not a finite number.
var ErrInvalidPoint = errors.New("invalid point")

// Point is a WGS84 position in degrees.
type Point struct {
	Longitude float64
	Latitude  float64
}

// Validate checks that the point lies on the globe.
func (p Point) Validate() error {
	switch {
	case math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0):
		return fmt.Errorf("%w: longitude %v", ErrInvalidPoint, p.Longitude)
	case math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0):
		return fmt.Errorf("%w: latitude %v", ErrInvalidPoint, p.Latitude)
	case p.Longitude < -180 || p.Longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidPoint, p.Longitude)
	case p.Latitude < -90 || p.Latitude > 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidPoint, p.Latitude)
	}

	return nil
}

// Coordinates returns the point in GeoJSON order: [longitude, latitude].
func (p Point) Coordinates() [2]float64 {
	return [2]float64{p.Longitude, p.Latitude}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.Longitude, p.Latitude)
}

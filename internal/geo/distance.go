package geo

import "math"

// EarthRadiusMeters is the mean earth radius used for all great-circle computations.
const EarthRadiusMeters = 6371000.0

const metersPerDegreeLat = math.Pi * EarthRadiusMeters / 180

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the great-circle distance between a and b in meters,
// computed with the haversine formula.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLng := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	// Rounding can push h slightly past 1 for antipodal points.
	h = math.Min(1, h)

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// LongitudeRange is a closed interval of longitudes.
type LongitudeRange struct {
	Min float64
	Max float64
}

// BoundingBox is a coarse rectangle that contains every point within a given
// radius of its center. It is used to prefilter candidates before Distance.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	// Lng holds one range, or two when the box wraps the antimeridian.
	Lng []LongitudeRange
}

// BoundingBoxAround returns a box containing all points within radiusMeters of center.
func BoundingBoxAround(center Point, radiusMeters float64) BoundingBox {
	latDelta := radiusMeters / metersPerDegreeLat

	box := BoundingBox{
		MinLat: math.Max(-90, center.Latitude-latDelta),
		MaxLat: math.Min(90, center.Latitude+latDelta),
	}

	full := []LongitudeRange{{Min: -180, Max: 180}}

	// Near a pole every longitude can be in range.
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.Lng = full

		return box
	}

	// Widen by the smallest cosine inside the box so the corners are covered.
	cos := math.Min(math.Cos(radians(box.MinLat)), math.Cos(radians(box.MaxLat)))
	lngDelta := latDelta / cos

	if lngDelta >= 180 {
		box.Lng = full

		return box
	}

	minLng := center.Longitude - lngDelta
	maxLng := center.Longitude + lngDelta

	switch {
	case minLng < -180:
		box.Lng = []LongitudeRange{{Min: minLng + 360, Max: 180}, {Min: -180, Max: maxLng}}
	case maxLng > 180:
		box.Lng = []LongitudeRange{{Min: minLng, Max: 180}, {Min: -180, Max: maxLng - 360}}
	default:
		box.Lng = []LongitudeRange{{Min: minLng, Max: maxLng}}
	}

	return box
}

// Contains reports whether p lies inside the box.
func (b BoundingBox) Contains(p Point) bool {
	if p.Latitude < b.MinLat || p.Latitude > b.MaxLat {
		return false
	}

	for _, r := range b.Lng {
		if p.Longitude >= r.Min && p.Longitude <= r.Max {
			return true
		}
	}

	return false
}

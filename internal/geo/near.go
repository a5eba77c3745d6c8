package geo

import "sort"

// Near pairs an item with its distance from a query origin.
type Near[T any] struct {
	Item     T
	Distance float64
}

// FindNear returns the items whose location lies within maxMeters of origin,
// ordered by ascending distance. The boundary is inclusive. Items at equal
// distance keep their input order.
func FindNear[T any](origin Point, maxMeters float64, items []T, locate func(T) Point) []Near[T] {
	result := make([]Near[T], 0, len(items))

	if maxMeters < 0 {
		return result
	}

	for _, item := range items {
		if d := Distance(origin, locate(item)); d <= maxMeters {
			result = append(result, Near[T]{Item: item, Distance: d})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Distance < result[j].Distance
	})

	return result
}

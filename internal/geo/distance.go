package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Distance returns the haversine great-circle distance between a and b in km.
func Distance(a, b Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Located is anything with an optional position. ok is false when the entity
// carries no usable coordinate.
type Located interface {
	Position() (c Coordinate, ok bool)
}

// Near pairs an entity with its distance from a query origin.
type Near[T any] struct {
	Item       T          `json:"item"`
	Coordinate Coordinate `json:"coordinate"`
	DistanceKm float64    `json:"distance_km"`
}

// Nearby returns the items within radiusKm of origin, closest first. Items
// without a valid position are dropped before any distance is computed.
// radiusKm may be math.Inf(1) to keep every valid item.
func Nearby[T Located](items []T, origin Coordinate, radiusKm float64) []Near[T] {
	out := make([]Near[T], 0, len(items))
	for _, it := range items {
		pos, ok := it.Position()
		if !ok || !pos.Valid() {
			continue
		}
		d := Distance(origin, pos)
		if d > radiusKm {
			continue
		}
		out = append(out, Near[T]{Item: it, Coordinate: pos, DistanceKm: d})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

package listing

import (
	"math"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
)

const earthRadiusKm = 6371.0

// DistanceEpsilonKm is the smallest change worth writing back to a vendor.
const DistanceEpsilonKm = 0.01

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b entity.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RecomputeDistances returns vendors with Distance refreshed relative to from.
// Vendors without coordinates are returned untouched, and a stored distance is
// only replaced when it moved by more than DistanceEpsilonKm. The input slice is
// not modified; the second result reports whether anything changed.
func RecomputeDistances(vendors []entity.Vendor, from entity.Location) ([]entity.Vendor, bool) {
	out := make([]entity.Vendor, len(vendors))
	copy(out, vendors)

	changed := false
	for i := range out {
		at, ok := out[i].Coordinates()
		if !ok {
			continue
		}
		d := Haversine(from, at)
		if out[i].Distance != nil && math.Abs(*out[i].Distance-d) <= DistanceEpsilonKm {
			continue
		}
		out[i].Distance = &d
		changed = true
	}
	return out, changed
}

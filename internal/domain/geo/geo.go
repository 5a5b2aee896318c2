// Package geo provides coordinate types and great-circle distance math.
package geo

import "math"

// EarthRadiusKM is the mean Earth radius used for haversine distances.
const EarthRadiusKM = 6371.0

// Point is an explicit, present-or-absent pair of coordinates. The zero
// value is not a valid point; construct with NewPoint.
type Point struct {
	Lat float64
	Lng float64
}

// NewPoint returns a pointer to a Point, the "present" variant of an
// optional coordinate. A nil *Point means "no fix".
func NewPoint(lat, lng float64) *Point {
	return &Point{Lat: lat, Lng: lng}
}

// DistanceKM returns the haversine great-circle distance between two points
// in kilometers.
func DistanceKM(a, b Point) float64 {
	latA := toRadians(a.Lat)
	latB := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKM * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

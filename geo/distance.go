// Package geo provides the great-circle distance primitive shared by
// duplicate detection and resolution geofencing.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// Valid reports whether the pair is a usable WGS84 coordinate.
func Valid(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceMeters calculates the great-circle distance between two points
// using the Haversine formula on a spherical Earth. Out-of-range inputs
// yield +Inf so callers can treat them uniformly as "never matches".
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	if !Valid(lat1, lon1) || !Valid(lat2, lon2) {
		return math.Inf(1)
	}

	radLat1 := lat1 * math.Pi / 180
	radLon1 := lon1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180
	radLon2 := lon2 * math.Pi / 180

	deltaLat := radLat2 - radLat1
	deltaLon := radLon2 - radLon1

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	// Floating point can overshoot the asin domain for near-antipodal or
	// identical points.
	if a > 1 {
		a = 1
	} else if a < 0 {
		a = 0
	}

	c := 2 * math.Asin(math.Sqrt(a))
	return earthRadiusMeters * c
}

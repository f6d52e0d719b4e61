package geo

import "math"

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in metres between two points
// using the haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	φ1 := lat1 * math.Pi / 180.0
	φ2 := lat2 * math.Pi / 180.0
	Δφ := (lat2 - lat1) * math.Pi / 180.0
	Δλ := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c * 1000
}

// Within reports whether a point lies inside radius metres of the centre and
// returns the distance.
func Within(lat, lng, centreLat, centreLng, radius float64) (bool, float64) {
	d := Distance(lat, lng, centreLat, centreLng)
	return d <= radius, d
}

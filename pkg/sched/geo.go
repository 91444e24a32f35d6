package sched

import (
	"math"

	"skysched-api/pkg/ontology"
)

// Mean Earth radius in kilometers.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between two points in
// kilometers using the haversine formula. A point at (0,0) is treated as
// unset data and yields 0 rather than a nonsensical long-haul distance.
func Distance(a, b ontology.GeoPoint) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair above 1 for antipodal pairs, which would
	// make the sqrt below NaN.
	if h > 1 {
		h = 1
	}
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// FlightTime converts a distance and cruise speed into whole minutes,
// rounded to the nearest minute. A non-positive distance or speed means the
// duration cannot be computed and yields 0.
func FlightTime(distanceKm, speedKmh float64) int {
	if distanceKm <= 0 || speedKmh <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Package geo provides the geometry primitives the mobility core builds on:
// great-circle distance and a robust centroid of a point set.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusMeters is the WGS-84 equatorial radius used for great-circle
// distance calculations.
const EarthRadiusMeters = 6378137.0

// Location is an immutable point on the Earth's surface in degrees.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Haversine returns the great-circle distance between a and b in meters,
// using EarthRadiusMeters as the sphere radius. It is symmetric and
// Haversine(a, a) == 0.
func Haversine(a, b Location) float64 {
	return HaversineR(a, b, EarthRadiusMeters)
}

// HaversineR is Haversine with an explicit sphere radius, useful for tests
// and callers modeling a non-Earth sphere.
func HaversineR(a, b Location, radiusMeters float64) float64 {
	lat1 := degToRad(a.Latitude)
	lat2 := degToRad(b.Latitude)
	dLat := degToRad(b.Latitude - a.Latitude)
	dLon := degToRad(b.Longitude - a.Longitude)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return radiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Centroid returns the median-latitude, median-longitude point of points.
// Median of an even-length sequence is the sorted value at index len/2 using
// integer (floored) division, i.e. the upper of the two middle values. This
// is robust to GPS
// outliers, unlike a mean centroid. Centroid panics if points is empty;
// callers must never pass an empty set.
func Centroid(points []Location) Location {
	if len(points) == 0 {
		panic("geo: Centroid of empty point set")
	}
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Latitude
		lons[i] = p.Longitude
	}
	sort.Float64s(lats)
	sort.Float64s(lons)
	mid := len(points) / 2
	return Location{Latitude: lats[mid], Longitude: lons[mid]}
}

// PathLength returns the cumulative great-circle length of the polyline
// formed by points in order. A path of fewer than two points has length 0.
func PathLength(points []Location) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Haversine(points[i-1], points[i])
	}
	return total
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

// Package mobility implements the mobility feature extraction core: stop
// detection, place clustering, move reconstruction, daily aggregation, and
// feature extraction over a stream of geolocation samples. The package
// performs no I/O and holds no state between calls; every exported function
// is a transformation of its arguments. The one that writes to an argument
// is ClusterPlaces, which assigns PlaceID in the stops slice it is given.
package mobility

import (
	"time"

	"github.com/mobilitytrace/core/internal/geo"
)

// NoPlace is the placeId used for a stop that is not (yet) assigned to any
// place, i.e. DBSCAN noise.
const NoPlace = -1

// Sample is a single geolocation observation.
type Sample struct {
	Location  geo.Location
	Timestamp time.Time
}

// Stop is a maximal contiguous run of samples whose centroid stayed within
// minStopDistance for at least minStopDuration.
type Stop struct {
	Location  geo.Location // centroid
	Arrival   time.Time
	Departure time.Time
	PlaceID   int // NoPlace (-1) until assigned by ClusterPlaces
}

// Duration returns the stop's dwell time.
func (s Stop) Duration() time.Duration {
	return s.Departure.Sub(s.Arrival)
}

// Place is a spatial cluster of stops.
type Place struct {
	ID       int
	Location geo.Location  // median-centroid of member stops
	Duration time.Duration // sum of member stop durations
}

// Move is the travel between two consecutive stops: the place ids it leaves
// and reaches, its departure and arrival times, and the path distance of the
// samples in between.
type Move struct {
	PlaceFrom int
	PlaceTo   int
	Departure time.Time
	Arrival   time.Time
	Distance  float64 // meters, cumulative great-circle length of the path
}

// Duration returns the move's travel time.
func (m Move) Duration() time.Duration {
	return m.Arrival.Sub(m.Departure)
}

// HourMatrix is a 24 x P matrix of hours-occupied, one row per hour of day,
// one column per place. Cells lie in [0,1]; rows sum to at most 1.
type HourMatrix struct {
	Hours [24][]float64 // Hours[h] has length NumPlaces
}

// NewHourMatrix allocates a zeroed matrix for numPlaces places.
func NewHourMatrix(numPlaces int) *HourMatrix {
	m := &HourMatrix{}
	for h := 0; h < 24; h++ {
		m.Hours[h] = make([]float64, numPlaces)
	}
	return m
}

// NumPlaces returns the matrix's column count.
func (m *HourMatrix) NumPlaces() int {
	if m == nil {
		return 0
	}
	for h := 0; h < 24; h++ {
		if m.Hours[h] != nil {
			return len(m.Hours[h])
		}
	}
	return 0
}

// Sum returns the sum of all cells in the matrix.
func (m *HourMatrix) Sum() float64 {
	var total float64
	for h := 0; h < 24; h++ {
		for _, v := range m.Hours[h] {
			total += v
		}
	}
	return total
}

// Features is the derived per-day behavioral feature record.
type Features struct {
	Day                    time.Time
	NumberOfPlacesDaily    int
	HomeStayDaily          float64 // -1 when not comparable
	TotalDistanceDaily     float64
	LocationVarianceDaily  float64
	EntropyDaily           float64
	NormalizedEntropyDaily float64
	RoutineIndexDaily      float64 // -1 when no history day is comparable
	HourMatrixDaily        *HourMatrix
}

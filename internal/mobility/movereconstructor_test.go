package mobility

import (
	"math"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/mobilitytrace/core/internal/geo"
)

func TestReconstructMovesTwoClustersWithAWalk(t *testing.T) {
	is := is.New(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	b := geo.Location{Latitude: 55.7020, Longitude: 12.5520}

	var samples []Sample
	samples = append(samples, minuteSamples(a, start, 12)...)
	walkStart := start.Add(12 * time.Minute)
	for i := 0; i < 6; i++ {
		frac := float64(i) / 5
		loc := geo.Location{
			Latitude:  a.Latitude + (b.Latitude-a.Latitude)*frac,
			Longitude: a.Longitude + (b.Longitude-a.Longitude)*frac,
		}
		samples = append(samples, Sample{Location: loc, Timestamp: walkStart.Add(time.Duration(i) * time.Minute)})
	}
	bStart := start.Add(18 * time.Minute)
	samples = append(samples, minuteSamples(b, bStart, 15)...)

	stops, err := DetectStops(samples, DefaultMinStopDistance, DefaultMinStopDuration)
	is.NoErr(err)
	is.Equal(len(stops), 2)
	ClusterPlaces(stops, DefaultMinPlaceDistance)

	moves, err := ReconstructMoves(samples, stops, DefaultMinMoveDuration)
	is.NoErr(err)
	is.Equal(len(moves), 1)
	is.True(math.Abs(moves[0].Distance-260) < 60)
	is.Equal(moves[0].Duration(), 6*time.Minute)
}

func TestReconstructMovesFiltersShortMoves(t *testing.T) {
	is := is.New(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	b := geo.Location{Latitude: 55.7500, Longitude: 12.6000}

	samples := []Sample{
		{Location: a, Timestamp: start},
		{Location: b, Timestamp: start.Add(time.Minute)}, // move shorter than 5 min
	}
	stops := []Stop{
		{Location: a, Arrival: start, Departure: start, PlaceID: 0},
		{Location: b, Arrival: start.Add(time.Minute), Departure: start.Add(time.Minute), PlaceID: 1},
	}
	moves, err := ReconstructMoves(samples, stops, DefaultMinMoveDuration)
	is.NoErr(err)
	is.Equal(len(moves), 0)
}

func TestReconstructMovesOrderingInvariant(t *testing.T) {
	is := is.New(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	b := geo.Location{Latitude: 55.7500, Longitude: 12.6000}

	var samples []Sample
	samples = append(samples, minuteSamples(a, start, 12)...)
	samples = append(samples, minuteSamples(b, start.Add(time.Hour), 12)...)

	stops, err := DetectStops(samples, DefaultMinStopDistance, DefaultMinStopDuration)
	is.NoErr(err)
	ClusterPlaces(stops, DefaultMinPlaceDistance)

	moves, err := ReconstructMoves(samples, stops, DefaultMinMoveDuration)
	is.NoErr(err)
	for _, mv := range moves {
		is.True(!mv.Departure.After(mv.Arrival))
	}
}

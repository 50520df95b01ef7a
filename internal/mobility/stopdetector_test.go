package mobility

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/mobilitytrace/core/internal/geo"
)

func minuteSamples(loc geo.Location, start time.Time, n int) []Sample {
	samples := make([]Sample, n)
	for i := 0; i < n; i++ {
		samples[i] = Sample{Location: loc, Timestamp: start.Add(time.Duration(i) * time.Minute)}
	}
	return samples
}

func TestDetectStopsSingleStationaryCluster(t *testing.T) {
	is := is.New(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	loc := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	samples := minuteSamples(loc, start, 20)

	stops, err := DetectStops(samples, DefaultMinStopDistance, DefaultMinStopDuration)
	is.NoErr(err)
	is.Equal(len(stops), 1)
	is.Equal(stops[0].Location, loc)
	is.Equal(stops[0].Duration(), 19*time.Minute)
}

func TestDetectStopsDurationFilter(t *testing.T) {
	is := is.New(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	loc := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	samples := minuteSamples(loc, start, 4)

	stops, err := DetectStops(samples, DefaultMinStopDistance, DefaultMinStopDuration)
	is.NoErr(err)
	is.Equal(len(stops), 0)
}

func TestDetectStopsTwoClustersWithAWalk(t *testing.T) {
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
	is.True(stops[0].Arrival.Equal(start))
	is.True(stops[1].Departure.After(stops[1].Arrival))
}

func TestDetectStopsEmptyInput(t *testing.T) {
	is := is.New(t)
	stops, err := DetectStops(nil, DefaultMinStopDistance, DefaultMinStopDuration)
	is.NoErr(err)
	is.Equal(len(stops), 0)
}

func TestDetectStopsUnorderedRejected(t *testing.T) {
	is := is.New(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	loc := geo.Location{Latitude: 55.7, Longitude: 12.55}
	samples := []Sample{
		{Location: loc, Timestamp: start.Add(time.Minute)},
		{Location: loc, Timestamp: start},
	}
	_, err := DetectStops(samples, DefaultMinStopDistance, DefaultMinStopDuration)
	is.True(err == ErrUnorderedSamples)
}

func TestDetectStopsPreconditionViolation(t *testing.T) {
	is := is.New(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Location: geo.Location{Latitude: 1000, Longitude: 0}, Timestamp: start},
	}
	_, err := DetectStops(samples, DefaultMinStopDistance, DefaultMinStopDuration)
	is.True(err == ErrPreconditionViolation)
}

func TestDetectStopsIntervalsDisjointAndOrdered(t *testing.T) {
	is := is.New(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	b := geo.Location{Latitude: 55.7050, Longitude: 12.5550}

	var samples []Sample
	samples = append(samples, minuteSamples(a, start, 15)...)
	samples = append(samples, minuteSamples(b, start.Add(20*time.Minute), 15)...)

	stops, err := DetectStops(samples, DefaultMinStopDistance, DefaultMinStopDuration)
	is.NoErr(err)
	for i := 1; i < len(stops); i++ {
		is.True(!stops[i].Arrival.Before(stops[i-1].Departure))
	}
}

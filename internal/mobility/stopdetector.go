package mobility

import (
	"time"

	"github.com/mobilitytrace/core/internal/geo"
)

// DefaultMinStopDistance is the default spatial radius threshold for a stop,
// in meters.
const DefaultMinStopDistance = 50.0

// DefaultMinStopDuration is the default minimum dwell time for a stop.
const DefaultMinStopDuration = 10 * time.Minute

// DetectStops scans a chronologically ordered batch of samples and returns
// the stops meeting minStopDistance and minStopDuration. Samples must be
// ordered non-decreasingly by timestamp; DetectStops returns
// ErrUnorderedSamples otherwise. An empty batch yields an empty, non-nil
// result and no error.
//
// The algorithm is greedy incremental-centroid expansion: a stop's centroid
// is recomputed after every sample folded into it, so its anchor tracks GPS
// drift, and a sample landing outside minStopDistance of the running
// centroid closes the stop. Stops shorter than minStopDuration are dropped
// in a final filter pass.
func DetectStops(samples []Sample, minStopDistance float64, minStopDuration time.Duration) ([]Stop, error) {
	if len(samples) == 0 {
		return []Stop{}, nil
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp.Before(samples[i-1].Timestamp) {
			return nil, ErrUnorderedSamples
		}
	}
	for _, s := range samples {
		if err := validateLocation(s.Location); err != nil {
			return nil, err
		}
	}

	n := len(samples)
	var candidates []Stop

	i := 0
	for i < n {
		j := i + 1
		c := geo.Centroid(locationsOf(samples[i:j]))
		for j < n && geo.Haversine(samples[j].Location, c) <= minStopDistance {
			j++
			c = geo.Centroid(locationsOf(samples[i:j]))
		}
		candidates = append(candidates, Stop{
			Location:  c,
			Arrival:   samples[i].Timestamp,
			Departure: samples[j-1].Timestamp,
			PlaceID:   NoPlace,
		})
		i = j
	}

	stops := make([]Stop, 0, len(candidates))
	for _, s := range candidates {
		if s.Departure.Sub(s.Arrival) >= minStopDuration {
			stops = append(stops, s)
		}
	}
	return stops, nil
}

func locationsOf(samples []Sample) []geo.Location {
	locs := make([]geo.Location, len(samples))
	for i, s := range samples {
		locs[i] = s.Location
	}
	return locs
}

func validateLocation(l geo.Location) error {
	if l.Latitude < -90 || l.Latitude > 90 || l.Longitude < -180 || l.Longitude > 180 {
		return ErrPreconditionViolation
	}
	if l.Latitude != l.Latitude || l.Longitude != l.Longitude { // NaN check
		return ErrPreconditionViolation
	}
	return nil
}

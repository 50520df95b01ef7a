package mobility

import (
	"time"

	"github.com/mobilitytrace/core/internal/geo"
)

// DefaultMinMoveDuration is the default minimum travel time for a move to be
// reported.
const DefaultMinMoveDuration = 5 * time.Minute

// ReconstructMoves threads the sample stream between consecutive stops and
// returns the ordered list of moves, filtered by minMoveDuration. Samples
// must be ordered non-decreasingly by timestamp; stops must be in
// chronological order.
func ReconstructMoves(samples []Sample, stops []Stop, minMoveDuration time.Duration) ([]Move, error) {
	if len(samples) == 0 {
		return []Move{}, nil
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp.Before(samples[i-1].Timestamp) {
			return nil, ErrUnorderedSamples
		}
	}

	departure := samples[0].Timestamp
	prevPlaceID := NoPlace

	var candidates []Move

	for _, stop := range stops {
		path := samplesBetween(samples, departure, stop.Arrival)
		if len(path) > 0 {
			candidates = append(candidates, Move{
				PlaceFrom: prevPlaceID,
				PlaceTo:   stop.PlaceID,
				Departure: departure,
				Arrival:   stop.Arrival,
				Distance:  geo.PathLength(locationsOf(path)),
			})
			departure = stop.Departure
			prevPlaceID = stop.PlaceID
			continue
		}

		// Dead end: no samples in [departure, stop.Arrival]. Emit a final
		// move to nowhere over whatever trailing samples exist and stop
		// threading further stops against this sample stream; any stops
		// after this one are not considered.
		tail := samplesFrom(samples, departure)
		if len(tail) > 0 {
			candidates = append(candidates, Move{
				PlaceFrom: prevPlaceID,
				PlaceTo:   NoPlace,
				Departure: departure,
				Arrival:   tail[len(tail)-1].Timestamp,
				Distance:  geo.PathLength(locationsOf(tail)),
			})
		}
		break
	}

	moves := make([]Move, 0, len(candidates))
	for _, m := range candidates {
		if m.Duration() >= minMoveDuration {
			moves = append(moves, m)
		}
	}
	return moves, nil
}

// samplesBetween returns samples with from <= t <= to, in order.
func samplesBetween(samples []Sample, from, to time.Time) []Sample {
	var out []Sample
	for _, s := range samples {
		if !s.Timestamp.Before(from) && !s.Timestamp.After(to) {
			out = append(out, s)
		}
	}
	return out
}

// samplesFrom returns samples with t >= from, in order.
func samplesFrom(samples []Sample, from time.Time) []Sample {
	var out []Sample
	for _, s := range samples {
		if !s.Timestamp.Before(from) {
			out = append(out, s)
		}
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mobilitytrace/core/internal/geo"
	"github.com/mobilitytrace/core/internal/mobility"
)

// engineRequest is the host's message-passing envelope into the core: the
// host owns both endpoints and the core never observes the host's
// scheduler beyond this one request/reply.
type engineRequest struct {
	Day     time.Time
	Samples []mobility.Sample
	// HistoryDays is the number of calendar days before Day to build
	// comparison HourMatrices for, from the same clustering run as Day's
	// matrix so place columns line up (place ids are not stable across
	// separate clustering runs, only within one).
	HistoryDays int
	Params      engineParams
}

type engineParams struct {
	MinStopDistance  float64
	MinStopDuration  time.Duration
	MinPlaceDistance float64
	MinMoveDuration  time.Duration
	Location         *time.Location
}

func defaultEngineParams(cfg config) engineParams {
	return engineParams{
		MinStopDistance:  cfg.minStopDistance,
		MinStopDuration:  cfg.minStopDuration,
		MinPlaceDistance: cfg.minPlaceDistance,
		MinMoveDuration:  cfg.minMoveDuration,
		Location:         time.UTC,
	}
}

// engineResponse is the reply the host receives after a run completes.
type engineResponse struct {
	Stops  []mobility.Stop
	Places []mobility.Place
	Moves  []mobility.Move
	// MovePaths[i] holds the raw samples spanning Moves[i].Departure to
	// Moves[i].Arrival, parallel to Moves, for archival path encoding.
	MovePaths [][]mobility.Sample
	Matrix    *mobility.HourMatrix
	History   []*mobility.HourMatrix
	Features  mobility.Features
	Err       error
}

// runEngine drives one full processing cycle — detect stops, cluster
// places, reconstruct moves, build the day's hour matrix, extract features
// — end to end for one subject's window of samples. Cancellation is
// cooperative at the boundary only: once dispatched, the core run executes
// to completion on its own goroutine; if ctx is done before the reply
// arrives, runEngine returns ctx's error and the run's result is discarded.
func runEngine(ctx context.Context, req engineRequest) engineResponse {
	replyCh := make(chan engineResponse, 1)

	go func() {
		replyCh <- processCycle(req)
	}()

	select {
	case <-ctx.Done():
		// The host must discard this result; the core run below still
		// completes on its own goroutine but nothing reads replyCh again.
		return engineResponse{Err: fmt.Errorf("engine: %w", ctx.Err())}
	case resp := <-replyCh:
		return resp
	}
}

func processCycle(req engineRequest) engineResponse {
	stops, err := mobility.DetectStops(req.Samples, req.Params.MinStopDistance, req.Params.MinStopDuration)
	if err != nil {
		return engineResponse{Err: fmt.Errorf("detect stops: %w", err)}
	}

	places := mobility.ClusterPlaces(stops, req.Params.MinPlaceDistance)

	moves, err := mobility.ReconstructMoves(req.Samples, stops, req.Params.MinMoveDuration)
	if err != nil {
		return engineResponse{Err: fmt.Errorf("reconstruct moves: %w", err)}
	}

	numPlaces := len(places)
	matrix, err := mobility.BuildHourMatrix(stops, req.Day, numPlaces, req.Params.Location)
	if err != nil {
		return engineResponse{Err: fmt.Errorf("build hour matrix: %w", err)}
	}

	history := make([]*mobility.HourMatrix, 0, req.HistoryDays)
	for d := 1; d <= req.HistoryDays; d++ {
		histDay := req.Day.AddDate(0, 0, -d)
		histMatrix, err := mobility.BuildHourMatrix(stops, histDay, numPlaces, req.Params.Location)
		if err != nil {
			return engineResponse{Err: fmt.Errorf("build history matrix for %s: %w", histDay.Format("2006-01-02"), err)}
		}
		history = append(history, histMatrix)
	}

	daySamples := samplesOnDay(req.Samples, req.Day, req.Params.Location)
	dayMoves := movesDepartingOnDay(moves, req.Day, req.Params.Location)

	features := mobility.ExtractFeatures(req.Day, daySamples, dayMoves, matrix, history)

	movePaths := make([][]mobility.Sample, len(moves))
	for i, mv := range moves {
		movePaths[i] = samplesInRange(req.Samples, mv.Departure, mv.Arrival)
	}

	return engineResponse{
		Stops:     stops,
		Places:    places,
		Moves:     moves,
		MovePaths: movePaths,
		Matrix:    matrix,
		History:   history,
		Features:  features,
	}
}

// samplesInRange returns the samples with from <= timestamp <= to, in order.
func samplesInRange(samples []mobility.Sample, from, to time.Time) []mobility.Sample {
	var out []mobility.Sample
	for _, s := range samples {
		if !s.Timestamp.Before(from) && !s.Timestamp.After(to) {
			out = append(out, s)
		}
	}
	return out
}

func samplesOnDay(samples []mobility.Sample, day time.Time, loc *time.Location) []mobility.Sample {
	y, m, d := day.In(loc).Date()
	var out []mobility.Sample
	for _, s := range samples {
		sy, sm, sd := s.Timestamp.In(loc).Date()
		if sy == y && sm == m && sd == d {
			out = append(out, s)
		}
	}
	return out
}

func movesDepartingOnDay(moves []mobility.Move, day time.Time, loc *time.Location) []mobility.Move {
	y, m, d := day.In(loc).Date()
	var out []mobility.Move
	for _, mv := range moves {
		my, mm, md := mv.Departure.In(loc).Date()
		if my == y && mm == m && md == d {
			out = append(out, mv)
		}
	}
	return out
}

func locationOf(lat, lon float64) geo.Location {
	return geo.Location{Latitude: lat, Longitude: lon}
}

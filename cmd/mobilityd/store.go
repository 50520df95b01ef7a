package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mobilitytrace/core/internal/mobility"
)

// loadSamples fetches every sample for subjectID within [from, to), ordered
// by timestamp, matching the non-decreasing order the core requires.
func loadSamples(ctx context.Context, pool *pgxpool.Pool, subjectID string, from, to time.Time) ([]mobility.Sample, error) {
	rows, err := pool.Query(ctx, `
		SELECT lat, lon, recorded_at_ms FROM sample
		WHERE subject_id = $1 AND recorded_at_ms >= $2 AND recorded_at_ms < $3
		ORDER BY recorded_at_ms ASC`,
		subjectID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []mobility.Sample
	for rows.Next() {
		var lat, lon float64
		var ms int64
		if err := rows.Scan(&lat, &lon, &ms); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sampleFromRow(lat, lon, ms))
	}
	return samples, rows.Err()
}

// storeFeatures persists one day's derived Features row for a subject,
// upserting on conflict.
func storeFeatures(ctx context.Context, pool *pgxpool.Pool, subjectID string, day time.Time, f mobility.Features) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO daily_feature (
			subject_id, day, number_of_places, home_stay, total_distance_m,
			location_variance, entropy, normalized_entropy, routine_index
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (subject_id, day) DO UPDATE SET
			number_of_places = EXCLUDED.number_of_places,
			home_stay = EXCLUDED.home_stay,
			total_distance_m = EXCLUDED.total_distance_m,
			location_variance = EXCLUDED.location_variance,
			entropy = EXCLUDED.entropy,
			normalized_entropy = EXCLUDED.normalized_entropy,
			routine_index = EXCLUDED.routine_index
	`, subjectID, day.Format("2006-01-02"),
		f.NumberOfPlacesDaily, f.HomeStayDaily, f.TotalDistanceDaily,
		f.LocationVarianceDaily, f.EntropyDaily, f.NormalizedEntropyDaily, f.RoutineIndexDaily)
	if err != nil {
		return fmt.Errorf("upsert daily_feature: %w", err)
	}
	return nil
}

// loadHourMatrix reconstructs a previously stored day's HourMatrix from its
// persisted per-cell rows, used by the archive job to re-attach a day's
// occupancy matrix to its Parquet export without recomputing it.
func loadHourMatrix(ctx context.Context, pool *pgxpool.Pool, subjectID string, day time.Time, numPlaces int) (*mobility.HourMatrix, error) {
	rows, err := pool.Query(ctx, `
		SELECT hour, place_id, occupancy FROM hour_matrix_cell
		WHERE subject_id = $1 AND day = $2`, subjectID, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query hour_matrix_cell: %w", err)
	}
	defer rows.Close()

	var found bool
	m := mobility.NewHourMatrix(numPlaces)
	for rows.Next() {
		var hour, placeID int
		var occupancy float64
		if err := rows.Scan(&hour, &placeID, &occupancy); err != nil {
			return nil, fmt.Errorf("scan hour_matrix_cell: %w", err)
		}
		if hour < 0 || hour >= 24 || placeID < 0 || placeID >= numPlaces {
			continue
		}
		m.Hours[hour][placeID] = occupancy
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return m, nil
}

func storeHourMatrix(ctx context.Context, pool *pgxpool.Pool, subjectID string, day time.Time, m *mobility.HourMatrix) error {
	dayStr := day.Format("2006-01-02")
	for h := 0; h < 24; h++ {
		for p, v := range m.Hours[h] {
			if v == 0 {
				continue
			}
			_, err := pool.Exec(ctx, `
				INSERT INTO hour_matrix_cell (subject_id, day, hour, place_id, occupancy)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (subject_id, day, hour, place_id) DO UPDATE SET occupancy = EXCLUDED.occupancy
			`, subjectID, dayStr, h, p, v)
			if err != nil {
				return fmt.Errorf("upsert hour_matrix_cell: %w", err)
			}
		}
	}
	return nil
}

// storeStops persists a subject's detected stops, upserting on the
// arrival timestamp since a subject has at most one stop arriving at any
// given millisecond.
func storeStops(ctx context.Context, pool *pgxpool.Pool, subjectID string, stops []mobility.Stop) error {
	for _, s := range stops {
		_, err := pool.Exec(ctx, `
			INSERT INTO stop (subject_id, centroid_lat, centroid_lon, place_id, arrival_ms, departure_ms)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (subject_id, arrival_ms) DO UPDATE SET
				centroid_lat = EXCLUDED.centroid_lat,
				centroid_lon = EXCLUDED.centroid_lon,
				place_id = EXCLUDED.place_id,
				departure_ms = EXCLUDED.departure_ms
		`, subjectID, s.Location.Latitude, s.Location.Longitude, s.PlaceID,
			s.Arrival.UnixMilli(), s.Departure.UnixMilli())
		if err != nil {
			return fmt.Errorf("upsert stop: %w", err)
		}
	}
	return nil
}

// storeMoves persists a subject's reconstructed moves, encoding each move's
// raw sample path (paths[i] corresponds to moves[i]) as one or more Google
// polyline chunks via encodeMovePath and joining them into the single
// path_polyline column, upserting on the departure timestamp.
func storeMoves(ctx context.Context, pool *pgxpool.Pool, subjectID string, moves []mobility.Move, paths [][]mobility.Sample) error {
	for i, mv := range moves {
		polylineChunks := encodeMovePath(paths[i])
		encodedPath := strings.Join(polylineChunks, ";")

		_, err := pool.Exec(ctx, `
			INSERT INTO move (subject_id, place_from, place_to, departure_ms, arrival_ms, distance_m, path_polyline)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (subject_id, departure_ms) DO UPDATE SET
				place_from = EXCLUDED.place_from,
				place_to = EXCLUDED.place_to,
				arrival_ms = EXCLUDED.arrival_ms,
				distance_m = EXCLUDED.distance_m,
				path_polyline = EXCLUDED.path_polyline
		`, subjectID, mv.PlaceFrom, mv.PlaceTo, mv.Departure.UnixMilli(), mv.Arrival.UnixMilli(),
			mv.Distance, encodedPath)
		if err != nil {
			return fmt.Errorf("upsert move: %w", err)
		}
	}
	return nil
}

func sampleFromRow(lat, lon float64, recordedAtMs int64) mobility.Sample {
	return mobility.Sample{
		Location:  locationOf(lat, lon),
		Timestamp: time.UnixMilli(recordedAtMs).UTC(),
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// runAggregateDaily builds yesterday's Features for every subject that
// reported a sample in the window and persists them: count first, bail
// early if there is nothing to do, then process subject by subject.
func runAggregateDaily(ctx context.Context, pool *pgxpool.Pool, params engineParams, historyWindowDays int) error {
	startTime := time.Now()

	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)
	today := yesterday.AddDate(0, 0, 1)
	dateStr := yesterday.Format("2006-01-02")

	log.Printf("[aggregate] Starting for %s", dateStr)

	subjectIDs, err := subjectsWithSamples(ctx, pool, yesterday, today)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	if len(subjectIDs) == 0 {
		log.Printf("[aggregate] No subjects reported samples on %s", dateStr)
		return nil
	}

	var distances []float64
	processed := 0

	for _, subjectID := range subjectIDs {
		windowStart := yesterday.AddDate(0, 0, -historyWindowDays)
		samples, err := loadSamples(ctx, pool, subjectID, windowStart, today)
		if err != nil {
			log.Printf("[aggregate] %s: load samples failed: %v", subjectID, err)
			continue
		}
		if len(samples) == 0 {
			continue
		}

		resp := runEngine(ctx, engineRequest{
			Day:         yesterday,
			Samples:     samples,
			HistoryDays: historyWindowDays,
			Params:      params,
		})
		if resp.Err != nil {
			log.Printf("[aggregate] %s: engine failed: %v", subjectID, resp.Err)
			continue
		}

		if err := storeHourMatrix(ctx, pool, subjectID, yesterday, resp.Matrix); err != nil {
			log.Printf("[aggregate] %s: store matrix failed: %v", subjectID, err)
			continue
		}
		if err := storeFeatures(ctx, pool, subjectID, yesterday, resp.Features); err != nil {
			log.Printf("[aggregate] %s: store features failed: %v", subjectID, err)
			continue
		}
		if err := storeStops(ctx, pool, subjectID, resp.Stops); err != nil {
			log.Printf("[aggregate] %s: store stops failed: %v", subjectID, err)
			continue
		}
		if err := storeMoves(ctx, pool, subjectID, resp.Moves, resp.MovePaths); err != nil {
			log.Printf("[aggregate] %s: store moves failed: %v", subjectID, err)
			continue
		}

		distances = append(distances, resp.Features.TotalDistanceDaily)
		processed++
	}

	elapsed := time.Since(startTime)
	if len(distances) > 0 {
		log.Printf("[aggregate] Processed %d/%d subjects for %s in %s (p50 distance %.0fm, p90 %.0fm)",
			processed, len(subjectIDs), dateStr, elapsed, percentile(distances, 50), percentile(distances, 90))
	} else {
		log.Printf("[aggregate] Processed %d/%d subjects for %s in %s", processed, len(subjectIDs), dateStr, elapsed)
	}
	return nil
}

func subjectsWithSamples(ctx context.Context, pool *pgxpool.Pool, from, to time.Time) ([]string, error) {
	rows, err := pool.Query(ctx, `
		SELECT DISTINCT subject_id FROM sample
		WHERE recorded_at_ms >= $1 AND recorded_at_ms < $2`,
		from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

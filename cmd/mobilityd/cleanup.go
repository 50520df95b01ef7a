package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// rawSampleRetention is how long raw samples are kept once their day has
// been aggregated into daily_feature rows.
const rawSampleRetention = 35 * 24 * time.Hour

func runCleanupSamples(ctx context.Context, pool *pgxpool.Pool) error {
	startTime := time.Now()
	cutoff := time.Now().Add(-rawSampleRetention)

	result, err := pool.Exec(ctx,
		`DELETE FROM sample WHERE recorded_at_ms < $1`, cutoff.UnixMilli())
	if err != nil {
		return fmt.Errorf("delete old samples: %w", err)
	}

	elapsed := time.Since(startTime)
	log.Printf("[cleanup] Deleted %d samples older than %s in %s",
		result.RowsAffected(), cutoff.Format(time.RFC3339), elapsed)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ngsiEntity is a single NGSI-style context entity describing one subject's
// last known location, as served by a context broker acquisition
// collaborator (location acquisition itself is out of core scope per §1;
// this is the host's ingestion boundary).
type ngsiEntity struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Location json.RawMessage `json:"location"`
}

type sampleRow struct {
	subjectID string
	lat       float64
	lon       float64
}

// unwrapLocation extracts [lon, lat] coordinates from an NGSI location
// attribute, tolerating both the GeoJSON-wrapped and the bare-value forms
// context brokers commonly emit.
func unwrapLocation(raw json.RawMessage) (lon, lat float64, ok bool) {
	if len(raw) == 0 {
		return 0, 0, false
	}

	var nested struct {
		Value struct {
			Coordinates [2]float64 `json:"coordinates"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && (nested.Value.Coordinates[0] != 0 || nested.Value.Coordinates[1] != 0) {
		return nested.Value.Coordinates[0], nested.Value.Coordinates[1], true
	}

	var direct struct {
		Coordinates [2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &direct); err == nil && (direct.Coordinates[0] != 0 || direct.Coordinates[1] != 0) {
		return direct.Coordinates[0], direct.Coordinates[1], true
	}

	return 0, 0, false
}

func parseEntity(entity *ngsiEntity) *sampleRow {
	lon, lat, ok := unwrapLocation(entity.Location)
	if !ok {
		return nil
	}
	return &sampleRow{subjectID: entity.ID, lat: lat, lon: lon}
}

// collectSamples polls the acquisition endpoint once, parses every entity it
// returns, and bulk-inserts the resulting samples via COPY for
// high-throughput ingestion.
func collectSamples(ctx context.Context, pool *pgxpool.Pool, url string) (int, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ingest fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ingest HTTP %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var entities []ngsiEntity
	if err := json.Unmarshal(body, &entities); err != nil {
		return 0, fmt.Errorf("parse ingest JSON: %w", err)
	}

	rows := make([]*sampleRow, 0, len(entities))
	for i := range entities {
		if entities[i].ID == "" {
			continue
		}
		if row := parseEntity(&entities[i]); row != nil {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		log.Println("[ingest] No valid samples parsed from response")
		return 0, nil
	}

	const batchSize = 500
	now := time.Now()
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		copyRows := make([][]interface{}, len(batch))
		for j, r := range batch {
			copyRows[j] = []interface{}{r.subjectID, r.lat, r.lon, now.UnixMilli()}
		}

		_, err := pool.CopyFrom(ctx,
			pgx.Identifier{"sample"},
			[]string{"subject_id", "lat", "lon", "recorded_at_ms"},
			pgx.CopyFromRows(copyRows),
		)
		if err != nil {
			return 0, fmt.Errorf("insert batch: %w", err)
		}
	}

	elapsed := time.Since(start)
	log.Printf("[ingest] %d samples in %s", len(rows), elapsed)
	return len(rows), nil
}

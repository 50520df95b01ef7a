package main

import (
	"os"
	"strconv"
	"time"
)

// config holds the host's environment-derived settings. Tunable core
// parameters carry their package-level defaults but may be overridden via
// environment variables using plain os.Getenv — no config-loading library
// is introduced.
type config struct {
	databaseURL string

	minStopDistance  float64
	minStopDuration  time.Duration
	minPlaceDistance float64
	minMoveDuration  time.Duration
	historyWindow    int // days

	ingestURL      string
	ingestInterval time.Duration
}

func loadConfig() config {
	cfg := config{
		databaseURL: os.Getenv("DATABASE_URL"),

		minStopDistance:  envFloat("MIN_STOP_DISTANCE_M", 50.0),
		minStopDuration:  envDuration("MIN_STOP_DURATION", 10*time.Minute),
		minPlaceDistance: envFloat("MIN_PLACE_DISTANCE_M", 50.0),
		minMoveDuration:  envDuration("MIN_MOVE_DURATION", 5*time.Minute),
		historyWindow:    envInt("HISTORY_WINDOW_DAYS", 28),

		ingestURL:      envString("INGEST_URL", "http://localhost:8080/samples"),
		ingestInterval: envDuration("INGEST_INTERVAL", 30*time.Second),
	}
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

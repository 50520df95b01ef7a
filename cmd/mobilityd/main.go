package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	cfg := loadConfig()
	if cfg.databaseURL == "" {
		log.Fatal("FATAL: DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := newPool(ctx, cfg.databaseURL)
	if err != nil {
		log.Fatalf("FATAL: Database connection failed: %v", err)
	}
	defer pool.Close()

	var ok int
	if err := pool.QueryRow(ctx, "SELECT 1 as ok").Scan(&ok); err != nil {
		log.Fatalf("FATAL: Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM sample LIMIT 1`).Scan(&count); err != nil {
		log.Fatalf("FATAL: sample table check failed: %v", err)
	}
	log.Println("sample table: OK")

	params := defaultEngineParams(cfg)

	monday := time.Monday
	jobs := []scheduledJob{
		{name: "aggregate-daily", hour: 3, dayOfWeek: nil, fn: func(ctx context.Context) error {
			return runAggregateDaily(ctx, pool, params, cfg.historyWindow)
		}},
		{name: "cleanup-samples", hour: 4, dayOfWeek: nil, fn: func(ctx context.Context) error {
			return runCleanupSamples(ctx, pool)
		}},
		{name: "archive-features", hour: 5, dayOfWeek: &monday, fn: func(ctx context.Context) error {
			return runArchiveFeatures(ctx, pool)
		}},
	}

	// --- CLI mode: run a specific job and exit ---
	// Usage: mobilityd run <job-name>
	//   e.g. mobilityd run aggregate-daily
	//        mobilityd run cleanup-samples
	if len(os.Args) >= 3 && os.Args[1] == "run" {
		jobName := os.Args[2]
		var target *scheduledJob
		for i := range jobs {
			if jobs[i].name == jobName {
				target = &jobs[i]
				break
			}
		}
		if target == nil {
			log.Printf("Unknown job: %s", jobName)
			log.Printf("Available jobs:")
			for _, j := range jobs {
				log.Printf("  - %s", j.name)
			}
			os.Exit(1)
		}
		log.Printf("[run] Executing %s...", target.name)
		if err := target.fn(ctx); err != nil {
			log.Fatalf("[run] %s failed: %v", target.name, err)
		}
		log.Printf("[run] %s completed successfully", target.name)
		return
	}

	maskedURL := maskDatabaseURL(cfg.databaseURL)
	log.Println("=== mobilityd ===")
	log.Printf("Ingest interval: %s", cfg.ingestInterval)
	log.Printf("Database: %s", maskedURL)
	log.Printf("Ingest:   %s", cfg.ingestURL)
	log.Println("Scheduled jobs:")
	dayNames := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	for _, job := range jobs {
		dayStr := "daily"
		if job.dayOfWeek != nil {
			dayStr = dayNames[int(*job.dayOfWeek)]
		}
		log.Printf("  - %s: %02d:00 UTC (%s)", job.name, job.hour, dayStr)
	}
	log.Println("")
	log.Println("Starting main loop...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	var totalCollected int64
	var totalCycles int64
	var totalErrors int64

	jobLastRun := make(map[string]string)

	ticker := time.NewTicker(cfg.ingestInterval)
	defer ticker.Stop()

	collected, err := collectSamples(ctx, pool, cfg.ingestURL)
	if err != nil {
		totalErrors++
		log.Printf("[ingest] Failed: %v", err)
	} else {
		totalCollected += int64(collected)
		totalCycles++
	}
	checkScheduledJobs(ctx, jobs, jobLastRun)

	for {
		select {
		case <-sigCh:
			log.Printf("Shutting down. Total: %d samples in %d cycles, %d errors.",
				totalCollected, totalCycles, totalErrors)
			cancel()
			return
		case <-ticker.C:
			collected, err := collectSamples(ctx, pool, cfg.ingestURL)
			if err != nil {
				totalErrors++
				log.Printf("[ingest] Failed: %v", err)
			} else {
				totalCollected += int64(collected)
				totalCycles++
				if totalCycles%10 == 0 {
					log.Printf("[ingest] cycle %d: %d samples | total: %d, errors: %d",
						totalCycles, collected, totalCollected, totalErrors)
				}
			}
			checkScheduledJobs(ctx, jobs, jobLastRun)
		}
	}
}

func maskDatabaseURL(url string) string {
	atIdx := strings.Index(url, "@")
	if atIdx == -1 {
		return url
	}
	prefix := url[:strings.Index(url, "://")+3]
	rest := url[len(prefix):]
	colonIdx := strings.Index(rest, ":")
	if colonIdx == -1 || colonIdx > strings.Index(rest, "@") {
		return url
	}
	return fmt.Sprintf("%s%s:***@%s", prefix, rest[:colonIdx], rest[strings.Index(rest, "@")+1:])
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parquet-go/parquet-go"
)

// ParquetFeature is the Parquet schema for one subject-day's archived
// feature record, one row per subject per day.
type ParquetFeature struct {
	Day               string    `parquet:"day"`
	SubjectID         string    `parquet:"subject_id"`
	NumberOfPlaces    int32     `parquet:"number_of_places"`
	HomeStay          float64   `parquet:"home_stay"`
	TotalDistanceM    float64   `parquet:"total_distance_m"`
	LocationVariance  float64   `parquet:"location_variance"`
	Entropy           float64   `parquet:"entropy"`
	NormalizedEntropy float64   `parquet:"normalized_entropy"`
	RoutineIndex      float64   `parquet:"routine_index"`
	// HourOccupancy is the day's HourMatrix flattened row-major
	// (hour*NumberOfPlaces+place), re-attached via loadHourMatrix so a
	// consumer can replay the day's occupancy shape without rerunning the
	// core over raw samples.
	HourOccupancy []float64 `parquet:"hour_occupancy"`
}

func getObjectStoreClient() (*s3.Client, string) {
	endpoint := os.Getenv("R2_ENDPOINT")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	secretAccessKey := os.Getenv("R2_SECRET_ACCESS_KEY")

	if endpoint == "" || accessKeyID == "" || secretAccessKey == "" {
		return nil, ""
	}

	bucket := os.Getenv("R2_BUCKET")
	if bucket == "" {
		bucket = "mobility-features"
	}

	client := s3.New(s3.Options{
		BaseEndpoint: &endpoint,
		Region:       "auto",
		Credentials:  credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
	})

	return client, bucket
}

// runArchiveFeatures exports yesterday's daily_feature rows to Parquet and
// uploads the object, idempotently guarded by a HeadObject existence check.
func runArchiveFeatures(ctx context.Context, pool *pgxpool.Pool) error {
	startTime := time.Now()

	store, bucket := getObjectStoreClient()
	if store == nil {
		log.Println("[archive] Object store not configured — skipping archive")
		return nil
	}

	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)
	dayStr := yesterday.Format("2006-01-02")

	key := fmt.Sprintf("features/%04d/%02d/%02d.parquet",
		yesterday.Year(), yesterday.Month(), yesterday.Day())

	_, err := store.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: &key})
	if err == nil {
		log.Printf("[archive] %s already exists — skipping", key)
		return nil
	}

	rows, err := fetchDailyFeatureRows(ctx, pool, yesterday, dayStr)
	if err != nil {
		return fmt.Errorf("fetch daily_feature rows: %w", err)
	}
	if len(rows) == 0 {
		log.Printf("[archive] No features for %s", dayStr)
		return nil
	}

	log.Printf("[archive] Writing %d feature rows to %s", len(rows), key)

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[ParquetFeature](&buf)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}

	body := buf.Bytes()
	contentType := "application/vnd.apache.parquet"
	_, err = store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
		Metadata: map[string]string{
			"rows": fmt.Sprintf("%d", len(rows)),
			"date": dayStr,
		},
	})
	if err != nil {
		return fmt.Errorf("upload to object store: %w", err)
	}

	elapsed := time.Since(startTime)
	sizeKB := float64(len(body)) / 1024
	log.Printf("[archive] Archived %d feature rows (%.1f KB) to %s in %s", len(rows), sizeKB, key, elapsed)
	return nil
}

func fetchDailyFeatureRows(ctx context.Context, pool *pgxpool.Pool, day time.Time, dayStr string) ([]ParquetFeature, error) {
	dbRows, err := pool.Query(ctx, `
		SELECT subject_id, number_of_places, home_stay, total_distance_m,
			location_variance, entropy, normalized_entropy, routine_index
		FROM daily_feature WHERE day = $1`, dayStr)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	var rows []ParquetFeature
	for dbRows.Next() {
		var r ParquetFeature
		var numPlaces int
		if err := dbRows.Scan(&r.SubjectID, &numPlaces, &r.HomeStay, &r.TotalDistanceM,
			&r.LocationVariance, &r.Entropy, &r.NormalizedEntropy, &r.RoutineIndex); err != nil {
			return nil, fmt.Errorf("scan daily_feature: %w", err)
		}
		r.Day = dayStr
		r.NumberOfPlaces = int32(numPlaces)

		if numPlaces > 0 {
			matrix, err := loadHourMatrix(ctx, pool, r.SubjectID, day, numPlaces)
			if err != nil {
				return nil, fmt.Errorf("load hour matrix for %s: %w", r.SubjectID, err)
			}
			if matrix != nil {
				r.HourOccupancy = make([]float64, 0, 24*numPlaces)
				for h := 0; h < 24; h++ {
					r.HourOccupancy = append(r.HourOccupancy, matrix.Hours[h]...)
				}
			}
		}

		rows = append(rows, r)
	}
	return rows, dbRows.Err()
}

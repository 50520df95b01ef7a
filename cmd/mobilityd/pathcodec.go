package main

import (
	polyline "github.com/twpayne/go-polyline"

	"github.com/mobilitytrace/core/internal/geo"
	"github.com/mobilitytrace/core/internal/mobility"
)

// maxPathPointsPerChunk bounds how many raw samples go into a single
// encoded polyline chunk (by point count rather than cumulative length — a
// move's path is typically short enough that either bound produces one
// chunk, but long moves still archive cleanly).
const maxPathPointsPerChunk = 500

// splitMovePath partitions a move's raw sample path into chunks of at most
// maxPathPointsPerChunk points each.
func splitMovePath(path []mobility.Sample) [][]mobility.Sample {
	if len(path) == 0 {
		return nil
	}
	var chunks [][]mobility.Sample
	for i := 0; i < len(path); i += maxPathPointsPerChunk {
		end := i + maxPathPointsPerChunk
		if end > len(path) {
			end = len(path)
		}
		chunks = append(chunks, path[i:end])
	}
	return chunks
}

// encodeMovePath encodes a move's raw sample path as one or more Google
// polyline strings (one per chunk from splitMovePath), so a downstream map
// UI can render the reconstructed walk between two stops without
// re-fetching raw samples.
func encodeMovePath(path []mobility.Sample) []string {
	chunks := splitMovePath(path)
	encoded := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		coords := make([][]float64, len(chunk))
		for i, s := range chunk {
			coords[i] = []float64{s.Location.Latitude, s.Location.Longitude}
		}
		encoded = append(encoded, string(polyline.EncodeCoords(coords)))
	}
	return encoded
}

// decodeMovePath is the inverse of encodeMovePath, used when rehydrating an
// archived move's path for inspection or re-aggregation.
func decodeMovePath(encoded []string) ([]geo.Location, error) {
	var locs []geo.Location
	for _, chunk := range encoded {
		coords, _, err := polyline.DecodeCoords([]byte(chunk))
		if err != nil {
			return nil, err
		}
		for _, c := range coords {
			locs = append(locs, geo.Location{Latitude: c[0], Longitude: c[1]})
		}
	}
	return locs, nil
}

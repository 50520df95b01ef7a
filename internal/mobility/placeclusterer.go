package mobility

import (
	"time"

	"github.com/mobilitytrace/core/internal/geo"
)

// DefaultMinPlaceDistance is the default DBSCAN neighborhood radius (epsilon)
// for clustering stops into places, in meters.
const DefaultMinPlaceDistance = 50.0

// DefaultMinPlacePoints is the default DBSCAN minPoints. With minPoints = 1
// every stop is reachable and the result is a partition into connected
// components under the epsilon-neighbor relation; no stop is left as noise.
const DefaultMinPlacePoints = 1

// ClusterPlaces assigns a placeId to every stop's PlaceID field (mutating
// the slice in place) by density-based clustering (DBSCAN) over stop
// centroids under great-circle distance, and returns the resulting places.
//
// Place ids are assigned in the iteration order stops are clustered in and
// are stable only within a single call; they carry no meaning across runs
// on different data windows. Consumers needing cross-run identity must key
// off a place's Location instead.
func ClusterPlaces(stops []Stop, minPlaceDistance float64) []Place {
	return clusterPlaces(stops, minPlaceDistance, DefaultMinPlacePoints)
}

// ClusterPlacesMinPoints is ClusterPlaces with an explicit DBSCAN minPoints,
// exposed so callers can exercise the noise path (minPoints > 1) directly.
func ClusterPlacesMinPoints(stops []Stop, minPlaceDistance float64, minPoints int) []Place {
	return clusterPlaces(stops, minPlaceDistance, minPoints)
}

func clusterPlaces(stops []Stop, eps float64, minPoints int) []Place {
	n := len(stops)
	if n == 0 {
		return nil
	}

	const (
		unvisited = 0
		noise     = -1
	)
	labels := make([]int, n)
	nextID := 0

	neighborsOf := func(idx int) []int {
		var neighbors []int
		for k := 0; k < n; k++ {
			if k == idx {
				continue
			}
			if geo.Haversine(stops[idx].Location, stops[k].Location) <= eps {
				neighbors = append(neighbors, k)
			}
		}
		return neighbors
	}

	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		neighbors := neighborsOf(i)
		if len(neighbors)+1 < minPoints {
			labels[i] = noise
			continue
		}

		id := nextID
		nextID++
		labels[i] = id

		queue := append([]int{}, neighbors...)
		for qi := 0; qi < len(queue); qi++ {
			idx := queue[qi]
			if labels[idx] == noise {
				labels[idx] = id
			}
			if labels[idx] != unvisited {
				continue
			}
			labels[idx] = id
			idxNeighbors := neighborsOf(idx)
			if len(idxNeighbors)+1 >= minPoints {
				queue = append(queue, idxNeighbors...)
			}
		}
	}

	for i := range stops {
		if labels[i] == noise {
			stops[i].PlaceID = NoPlace
		} else {
			stops[i].PlaceID = labels[i]
		}
	}

	buckets := make(map[int][]int, nextID) // placeID -> stop indices
	for i, label := range labels {
		if label == noise {
			continue
		}
		buckets[label] = append(buckets[label], i)
	}

	places := make([]Place, 0, len(buckets))
	for id := 0; id < nextID; id++ {
		members := buckets[id]
		if len(members) == 0 {
			continue
		}
		locs := make([]geo.Location, len(members))
		var total time.Duration
		for k, idx := range members {
			locs[k] = stops[idx].Location
			total += stops[idx].Duration()
		}
		places = append(places, Place{
			ID:       id,
			Location: geo.Centroid(locs),
			Duration: total,
		})
	}
	return places
}

package mobility

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/mobilitytrace/core/internal/geo"
)

func TestClusterPlacesSingleCluster(t *testing.T) {
	is := is.New(t)
	loc := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	stops := []Stop{
		{Location: loc, Arrival: time.Unix(0, 0), Departure: time.Unix(0, 0).Add(19 * time.Minute), PlaceID: NoPlace},
	}
	places := ClusterPlaces(stops, DefaultMinPlaceDistance)
	is.Equal(len(places), 1)
	is.Equal(places[0].Location, loc)
	is.Equal(stops[0].PlaceID, 0)
}

func TestClusterPlacesTwoClusters(t *testing.T) {
	is := is.New(t)
	a := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	b := geo.Location{Latitude: 55.8000, Longitude: 12.6500} // far apart
	base := time.Unix(0, 0)
	stops := []Stop{
		{Location: a, Arrival: base, Departure: base.Add(10 * time.Minute), PlaceID: NoPlace},
		{Location: b, Arrival: base.Add(time.Hour), Departure: base.Add(time.Hour + 10*time.Minute), PlaceID: NoPlace},
	}
	places := ClusterPlaces(stops, DefaultMinPlaceDistance)
	is.Equal(len(places), 2)
	is.True(stops[0].PlaceID != stops[1].PlaceID)
}

func TestClusterPlacesEveryPlaceIDHasAPlace(t *testing.T) {
	is := is.New(t)
	base := time.Unix(0, 0)
	stops := []Stop{
		{Location: geo.Location{Latitude: 1, Longitude: 1}, Arrival: base, Departure: base.Add(time.Minute)},
		{Location: geo.Location{Latitude: 2, Longitude: 2}, Arrival: base, Departure: base.Add(time.Minute)},
		{Location: geo.Location{Latitude: 50, Longitude: 50}, Arrival: base, Departure: base.Add(time.Minute)},
	}
	places := ClusterPlaces(stops, DefaultMinPlaceDistance)
	ids := make(map[int]bool)
	for _, p := range places {
		ids[p.ID] = true
	}
	for _, s := range stops {
		if s.PlaceID >= 0 {
			is.True(ids[s.PlaceID])
		}
	}
}

func TestClusterPlacesNoiseWithHigherMinPoints(t *testing.T) {
	is := is.New(t)
	base := time.Unix(0, 0)
	stops := []Stop{
		{Location: geo.Location{Latitude: 10, Longitude: 10}, Arrival: base, Departure: base.Add(time.Minute)},
	}
	places := ClusterPlacesMinPoints(stops, DefaultMinPlaceDistance, 2)
	is.Equal(len(places), 0)
	is.Equal(stops[0].PlaceID, NoPlace)
}

func TestClusterPlacesDurationIsSumOfMembers(t *testing.T) {
	is := is.New(t)
	loc := geo.Location{Latitude: 55.7000, Longitude: 12.5500}
	base := time.Unix(0, 0)
	stops := []Stop{
		{Location: loc, Arrival: base, Departure: base.Add(10 * time.Minute)},
		{Location: loc, Arrival: base.Add(time.Hour), Departure: base.Add(time.Hour + 20*time.Minute)},
	}
	places := ClusterPlaces(stops, DefaultMinPlaceDistance)
	is.Equal(len(places), 1)
	is.Equal(places[0].Duration, 30*time.Minute)
}

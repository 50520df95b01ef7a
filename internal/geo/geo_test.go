package geo

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestHaversineSelfIsZero(t *testing.T) {
	is := is.New(t)
	a := Location{Latitude: 55.7, Longitude: 12.55}
	is.Equal(Haversine(a, a), 0.0)
}

func TestHaversineSymmetric(t *testing.T) {
	is := is.New(t)
	a := Location{Latitude: 55.7000, Longitude: 12.5500}
	b := Location{Latitude: 55.7020, Longitude: 12.5520}
	is.Equal(Haversine(a, b), Haversine(b, a))
}

func TestHaversineNonNegative(t *testing.T) {
	is := is.New(t)
	a := Location{Latitude: -10, Longitude: 170}
	b := Location{Latitude: 40, Longitude: -170}
	is.True(Haversine(a, b) >= 0)
}

func TestHaversineKnownDistance(t *testing.T) {
	is := is.New(t)
	// Roughly 260m apart.
	a := Location{Latitude: 55.7000, Longitude: 12.5500}
	b := Location{Latitude: 55.7020, Longitude: 12.5520}
	d := Haversine(a, b)
	is.True(math.Abs(d-260) < 40)
}

func TestCentroidOddCount(t *testing.T) {
	is := is.New(t)
	pts := []Location{
		{Latitude: 1, Longitude: 10},
		{Latitude: 2, Longitude: 20},
		{Latitude: 3, Longitude: 30},
	}
	c := Centroid(pts)
	is.Equal(c, Location{Latitude: 2, Longitude: 20})
}

func TestCentroidEvenCountUpperMiddle(t *testing.T) {
	is := is.New(t)
	pts := []Location{
		{Latitude: 1, Longitude: 10},
		{Latitude: 2, Longitude: 20},
		{Latitude: 3, Longitude: 30},
		{Latitude: 4, Longitude: 40},
	}
	c := Centroid(pts)
	// sorted index len/2 = 2 -> third element (0-indexed) = {3,30}
	is.Equal(c, Location{Latitude: 3, Longitude: 30})
}

func TestCentroidSinglePoint(t *testing.T) {
	is := is.New(t)
	pts := []Location{{Latitude: 55.7, Longitude: 12.55}}
	is.Equal(Centroid(pts), pts[0])
}

func TestCentroidEmptyPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on empty point set")
		}
	}()
	Centroid(nil)
}

func TestPathLengthAccumulates(t *testing.T) {
	is := is.New(t)
	pts := []Location{
		{Latitude: 55.7000, Longitude: 12.5500},
		{Latitude: 55.7010, Longitude: 12.5510},
		{Latitude: 55.7020, Longitude: 12.5520},
	}
	total := PathLength(pts)
	sum := Haversine(pts[0], pts[1]) + Haversine(pts[1], pts[2])
	is.Equal(total, sum)
}

func TestPathLengthShortInputs(t *testing.T) {
	is := is.New(t)
	is.Equal(PathLength(nil), 0.0)
	is.Equal(PathLength([]Location{{}}), 0.0)
}

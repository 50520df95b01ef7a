package mobility

import (
	"math"
	"time"
)

// ExtractFeatures computes the per-day behavioral feature record for
// calendar day day.
//
//   - todayMatrix is the HourMatrix already built for day (via
//     BuildHourMatrix).
//   - historyMatrices holds the matrices for prior days in the rolling
//     window (typically up to 28 days); order does not affect the result.
//   - daySamples must already be filtered to samples whose timestamp falls
//     on day; dayMoves to moves whose Departure falls on day. The extractor
//     treats whatever it receives as authoritative — it does not re-filter
//     by window or re-derive "on day" itself.
func ExtractFeatures(day time.Time, daySamples []Sample, dayMoves []Move, todayMatrix *HourMatrix, historyMatrices []*HourMatrix) Features {
	f := Features{
		Day:             day,
		HourMatrixDaily: todayMatrix,
	}

	f.NumberOfPlacesDaily = numberOfPlaces(todayMatrix)
	f.TotalDistanceDaily = totalDistance(dayMoves)
	f.LocationVarianceDaily = locationVariance(daySamples)

	sumM := todayMatrix.Sum()
	homeID := HomePlace(todayMatrix)
	if homeID == NoPlace || sumM == 0 {
		f.HomeStayDaily = -1
	} else {
		var home float64
		for h := 0; h < 24; h++ {
			home += todayMatrix.Hours[h][homeID]
		}
		f.HomeStayDaily = home / sumM
	}

	f.EntropyDaily = entropy(todayMatrix)
	if f.NumberOfPlacesDaily <= 1 {
		f.NormalizedEntropyDaily = 0
	} else {
		f.NormalizedEntropyDaily = f.EntropyDaily / math.Log(float64(f.NumberOfPlacesDaily))
	}

	f.RoutineIndexDaily = routineIndex(todayMatrix, historyMatrices)

	return f
}

func numberOfPlaces(m *HourMatrix) int {
	p := m.NumPlaces()
	count := 0
	for pl := 0; pl < p; pl++ {
		var sum float64
		for h := 0; h < 24; h++ {
			sum += m.Hours[h][pl]
		}
		if sum > 0 {
			count++
		}
	}
	return count
}

func totalDistance(moves []Move) float64 {
	var total float64
	for _, mv := range moves {
		total += mv.Distance
	}
	return total
}

func locationVariance(samples []Sample) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sumLat, sumLon float64
	for _, s := range samples {
		sumLat += s.Location.Latitude
		sumLon += s.Location.Longitude
	}
	n := float64(len(samples))
	meanLat, meanLon := sumLat/n, sumLon/n

	var varLat, varLon float64
	for _, s := range samples {
		dLat := s.Location.Latitude - meanLat
		dLon := s.Location.Longitude - meanLon
		varLat += dLat * dLat
		varLon += dLon * dLon
	}
	varLat /= n
	varLon /= n

	return math.Log(varLat + varLon + 1)
}

// entropy computes the Shannon entropy (natural log) of the duration
// distribution across places in matrix m, using each column's sum (hours
// occupied) as d_p.
func entropy(m *HourMatrix) float64 {
	p := m.NumPlaces()
	durations := make([]float64, p)
	var total float64
	places := 0
	for pl := 0; pl < p; pl++ {
		var sum float64
		for h := 0; h < 24; h++ {
			sum += m.Hours[h][pl]
		}
		durations[pl] = sum
		total += sum
		if sum > 0 {
			places++
		}
	}
	if total == 0 || places <= 1 {
		return 0
	}
	var h float64
	for _, d := range durations {
		if d <= 0 {
			continue
		}
		frac := d / total
		h -= frac * math.Log(frac)
	}
	return h
}

// routineIndex is the mean of Overlap(today, historical) across every
// historical matrix for which the overlap is defined (neither sum is zero).
// Returns -1 if none are defined.
func routineIndex(today *HourMatrix, history []*HourMatrix) float64 {
	var sum float64
	var count int
	for _, h := range history {
		o := Overlap(today, h)
		if o == -1 {
			continue
		}
		sum += o
		count++
	}
	if count == 0 {
		return -1
	}
	return sum / float64(count)
}

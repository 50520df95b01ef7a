package mobility

import "time"

// BuildHourMatrix builds the 24 x numPlaces hour-occupancy matrix for
// calendar day day (interpreted in loc) from stops whose Arrival falls on
// that day. It returns ErrStraddlesMidnight if any such stop's Arrival and
// Departure fall on different calendar days in loc; the caller must split
// the stop at midnight first.
func BuildHourMatrix(stops []Stop, day time.Time, numPlaces int, loc *time.Location) (*HourMatrix, error) {
	m := NewHourMatrix(numPlaces)
	target := day.In(loc)
	y, mo, d := target.Date()

	for _, s := range stops {
		arr := s.Arrival.In(loc)
		ay, amo, ad := arr.Date()
		if ay != y || amo != mo || ad != d {
			continue
		}
		dep := s.Departure.In(loc)
		dy, dmo, dd := dep.Date()
		if dy != ay || dmo != amo || dd != ad {
			return nil, ErrStraddlesMidnight
		}
		if s.PlaceID < 0 || s.PlaceID >= numPlaces {
			continue
		}
		hourSlots(m, arr, dep, s.PlaceID)
	}
	return m, nil
}

// hourSlots accumulates one stop's dwell time into m's hour rows for place.
// Arrival and departure each use their own hour: arrival.Hour() marks the
// partial leading hour, departure.Hour() marks the partial trailing hour,
// and every hour strictly between them is fully occupied.
func hourSlots(m *HourMatrix, arrival, departure time.Time, place int) {
	ah, am := arrival.Hour(), arrival.Minute()
	dh, dm := departure.Hour(), departure.Minute()

	if ah == dh {
		m.Hours[ah][place] += float64(dm-am) / 60
		return
	}

	m.Hours[ah][place] += 1 - float64(am)/60
	for h := ah + 1; h < dh; h++ {
		m.Hours[h][place] += 1
	}
	m.Hours[dh][place] += float64(dm) / 60
}

// Overlap returns the fraction of hour-place occupancy m and other share,
// normalized by the smaller total occupancy. It is symmetric and equals 1
// when m and other are identical and non-empty. Overlap returns -1 ("not
// comparable") when either matrix's Sum is zero.
func Overlap(m, other *HourMatrix) float64 {
	sumM, sumO := m.Sum(), other.Sum()
	if sumM == 0 || sumO == 0 {
		return -1
	}
	p := m.NumPlaces()
	if other.NumPlaces() < p {
		p = other.NumPlaces()
	}
	var shared float64
	for h := 0; h < 24; h++ {
		for pl := 0; pl < p; pl++ {
			a, b := m.Hours[h][pl], other.Hours[h][pl]
			if a < b {
				shared += a
			} else {
				shared += b
			}
		}
	}
	minSum := sumM
	if sumO < minSum {
		minSum = sumO
	}
	return shared / minSum
}

// MatrixError returns the mean absolute per-cell difference between m and
// other, normalized by 24*P. m and other must have the same NumPlaces; it
// panics otherwise, since there is no meaningful per-cell difference
// between matrices of different shape.
func MatrixError(m, other *HourMatrix) float64 {
	p := m.NumPlaces()
	if p != other.NumPlaces() {
		panic("mobility: MatrixError called with matrices of different NumPlaces")
	}
	if p == 0 {
		return 0
	}
	var total float64
	for h := 0; h < 24; h++ {
		for pl := 0; pl < p; pl++ {
			diff := m.Hours[h][pl] - other.Hours[h][pl]
			if diff < 0 {
				diff = -diff
			}
			total += diff
		}
	}
	return total / float64(24*p)
}

// HomePlace returns the place id with the greatest cumulative night-time
// (00:00-06:00) occupancy, or NoPlace if the night-time sum is zero.
func HomePlace(m *HourMatrix) int {
	p := m.NumPlaces()
	if p == 0 {
		return NoPlace
	}
	best := NoPlace
	var bestSum float64
	for pl := 0; pl < p; pl++ {
		var sum float64
		for h := 0; h < 6; h++ {
			sum += m.Hours[h][pl]
		}
		if sum > bestSum {
			bestSum = sum
			best = pl
		}
	}
	if bestSum == 0 {
		return NoPlace
	}
	return best
}

package scoring

import "math"

// ScaleBand converts a band-scale score (0..scale, typically 0..9)
// into the question's point range, clamped and rounded to half points
// the way the band scale itself is stepped.
func ScaleBand(band, points, scale float64) float64 {
	if scale <= 0 || points <= 0 {
		return 0
	}
	if band < 0 {
		band = 0
	}
	if band > scale {
		band = scale
	}
	scaled := band * points / scale
	return math.Round(scaled*2) / 2
}

// EstimateBand maps an overall percentage to an estimated band. The
// table follows the published raw-score conversion rather than a
// linear fit.
func EstimateBand(percentage int) float64 {
	switch {
	case percentage >= 90:
		return 9
	case percentage >= 82:
		return 8.5
	case percentage >= 75:
		return 8
	case percentage >= 67:
		return 7.5
	case percentage >= 60:
		return 7
	case percentage >= 55:
		return 6.5
	case percentage >= 50:
		return 6
	case percentage >= 42:
		return 5.5
	case percentage >= 35:
		return 5
	case percentage >= 27:
		return 4.5
	case percentage >= 20:
		return 4
	case percentage >= 12:
		return 3.5
	case percentage > 0:
		return 3
	default:
		return 0
	}
}

package mathutil

import "math"

// KaiserWindow fills dst with a symmetric Kaiser window of len(dst) points.
// Unlike a filter-design window it is not normalised; the peak value is 1.
func KaiserWindow(dst []float64, beta float64) {
	n := len(dst)
	switch n {
	case 0:
		return
	case 1:
		dst[0] = 1
		return
	}

	alpha := float64(n-1) / halfDivisor
	i0Beta := BesselI0(beta)
	for i := range dst {
		x := (float64(i) - alpha) / alpha
		dst[i] = BesselI0(beta*math.Sqrt(math.Max(0, 1-x*x))) / i0Beta
	}
}

package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Near reports whether a and b differ by at most eps.
func Near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

package utils

// Clamp01 clamps v to the closed interval [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CeilDiv returns ceil(a/b) for non-negative a and positive b.
// Returns 0 when b <= 0.
func CeilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

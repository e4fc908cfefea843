package clock

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PositivePart returns max(v, 0).
func PositivePart(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// EaseInCubic is t³.
func EaseInCubic(t float64) float64 { return t * t * t }

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

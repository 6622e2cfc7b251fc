// Package transform holds the scalar transforms between sleep hours and the
// unbounded logit scale the regression is fitted on.
//
// The forward direction maps hours h ∈ (0, 24) to logit(h/24). The backward
// direction, ToHours, maps any finite real back into the open interval (0, 24),
// which is what keeps every posterior prediction a physically possible sleep
// duration no matter how extreme the parameter draw.
package transform

import "math"

// HoursPerDay is the upper bound of the sleep scale.
const HoursPerDay = 24.0

var (
	minHours = math.Nextafter(0, 1)
	maxHours = math.Nextafter(HoursPerDay, 0)
)

// Logit returns log(p / (1-p)). It is ±Inf at p = 0 or 1 and NaN outside [0, 1].
func Logit(p float64) float64 {
	return math.Log(p) - math.Log1p(-p)
}

// Sigmoid is the inverse of Logit, evaluated without overflow for large |x|.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)

	return e / (1 + e)
}

// SleepRatio returns the fraction of the day spent asleep.
func SleepRatio(hours float64) float64 {
	return hours / HoursPerDay
}

// LogitSleepRatio returns logit(hours/24), the regression response.
func LogitSleepRatio(hours float64) float64 {
	return Logit(SleepRatio(hours))
}

// ToHours maps a logit-scale value back to hours: 24·sigmoid(x).
//
// The result is clamped into the open interval (0, 24): in float64, sigmoid
// saturates to exactly 0 or 1 for |x| beyond a few dozen, and the clamp keeps
// the bound strict. NaN passes through unchanged.
func ToHours(x float64) float64 {
	h := HoursPerDay * Sigmoid(x)
	switch {
	case h < minHours:
		return minHours
	case h > maxHours:
		return maxHours
	default:
		return h
	}
}

// Log10 is the base-10 logarithm used for mass and duration columns.
func Log10(v float64) float64 {
	return math.Log10(v)
}

// Pow10 inverts Log10, mapping log-scale axis values back to original units.
func Pow10(v float64) float64 {
	return math.Pow(10, v)
}

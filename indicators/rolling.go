package indicators

import (
	"math"

	"github.com/guregu/null/v6"
)

// window returns values[i-size+1..i] as plain floats, or false when the window
// starts before index 0 or contains a missing value.
func window(values []null.Float, i, size int) ([]float64, bool) {
	start := i - size + 1
	if size <= 0 || start < 0 {
		return nil, false
	}
	out := make([]float64, size)
	for j := start; j <= i; j++ {
		if !values[j].Valid {
			return nil, false
		}
		out[j-start] = values[j].Float64
	}
	return out, true
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the standard deviation with n-1 degrees of freedom
func sampleStd(xs []float64) float64 {
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// RollingMean is the trailing arithmetic mean over size values
func RollingMean(values []null.Float, size int) []null.Float {
	out := make([]null.Float, len(values))
	for i := range values {
		if w, ok := window(values, i, size); ok {
			out[i] = null.FloatFrom(mean(w))
		}
	}
	return out
}

// RollingStd is the trailing sample standard deviation over size values.
// size must be at least 2; smaller windows yield an all-null column.
func RollingStd(values []null.Float, size int) []null.Float {
	out := make([]null.Float, len(values))
	if size < 2 {
		return out
	}
	for i := range values {
		if w, ok := window(values, i, size); ok {
			out[i] = null.FloatFrom(sampleStd(w))
		}
	}
	return out
}

package signal

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// RMS returns the root-mean-square level of data. Empty input yields 0.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sq := make([]float64, len(data))
	vecmath.MulBlock(sq, data, data)

	sum := 0.0
	for _, v := range sq {
		sum += v
	}
	return math.Sqrt(sum / float64(len(data)))
}

// Peak returns the largest absolute sample value in data.
func Peak(data []float64) float64 {
	maxAbs := 0.0
	for _, v := range data {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}
	return maxAbs
}

// ZeroCrossings counts sign changes between consecutive samples. Zero is
// treated as non-negative, so a rise from negative to exactly zero counts as
// one crossing.
func ZeroCrossings(data []float64) int {
	n := 0
	for i := 1; i < len(data); i++ {
		a, b := data[i-1], data[i]
		if (a < 0 && b >= 0) || (a >= 0 && b < 0) {
			n++
		}
	}
	return n
}

// EstimateFrequency estimates the fundamental in Hz from the zero-crossing
// rate. It is only meaningful for signals with two crossings per period.
func EstimateFrequency(data []float64, sampleRate float64) float64 {
	if len(data) < 2 || sampleRate <= 0 {
		return 0
	}
	seconds := float64(len(data)) / sampleRate
	return float64(ZeroCrossings(data)) / (2 * seconds)
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := Peak(data)

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	vecmath.ScaleBlock(out, data, targetPeak/maxAbs)
	return out, nil
}

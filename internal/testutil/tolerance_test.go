package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	a := []float64{1.0, 2.0, 3.0}
	b := []float64{1.0, 2.1, 3.0}

	d, err := MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff = %v, want 0.1", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	_, err := MaxAbsDiff([]float64{1}, []float64{1, 2})
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestRequireHelpersPass(t *testing.T) {
	data := []float64{0, 0.5, 0.5, 1}
	RequireFinite(t, data)
	RequireBounded(t, data, 0, 1)
	RequireMonotonic(t, data, 1)
	RequireMonotonic(t, []float64{1, 1, 0.2}, -1)
	RequireSliceNearlyEqual(t, data, []float64{0, 0.5, 0.5, 1 + 1e-13}, 1e-12)
}

package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.3, 0.3},
		{-0.1, 0},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Fatalf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMsToSamples(t *testing.T) {
	if got := MsToSamples(100, 44100); got != 4410 {
		t.Fatalf("MsToSamples(100, 44100) = %v, want 4410", got)
	}
	if got := MsToSamples(0.5, 48000); got != 24 {
		t.Fatalf("MsToSamples(0.5, 48000) = %v, want 24", got)
	}
	for _, ms := range []float64{0, -5, math.NaN()} {
		if got := MsToSamples(ms, 44100); got != 0 {
			t.Fatalf("MsToSamples(%v) = %v, want 0", ms, got)
		}
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1) {
		t.Fatal("1 should be finite")
	}
	if IsFinite(math.NaN()) || IsFinite(math.Inf(-1)) {
		t.Fatal("NaN and Inf must not be finite")
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

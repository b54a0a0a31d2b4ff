package osc

import (
	"fmt"
	"math"
)

// maxWrapSteps bounds the subtract/add wrap loop. Larger excursions are
// folded with floor first so one call stays O(1) for any frequency.
const maxWrapSteps = 4

// Oscillator generates one waveform sample per call from a normalized phase
// accumulator.
//
// The waveform is chosen per call, so a single Oscillator can switch shape
// without losing phase continuity. Frequency is not validated: zero holds the
// phase, negative values run the phase backwards, and frequencies at or above
// Nyquist still yield bounded output. Non-finite frequencies leave the phase
// untouched.
//
// This implementation is single-threaded and allocation free.
type Oscillator struct {
	phase      float64
	sampleRate float64
}

// New creates an oscillator for the given sample rate.
// Sample rate must be positive and finite.
func New(sampleRate float64) (*Oscillator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("oscillator sample rate must be positive and finite: %f", sampleRate)
	}

	return &Oscillator{
		sampleRate: sampleRate,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 {
	return o.sampleRate
}

// Phase returns the normalized phase in [0, 1).
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// Reset returns the phase to zero.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Process renders one sample of waveform w at frequency Hz.
func (o *Oscillator) Process(w Waveform, frequency float64) float64 {
	switch w {
	case Sawtooth:
		return o.ProcessSawtooth(frequency)
	case Square:
		return o.ProcessSquare(frequency)
	case Triangle:
		return o.ProcessTriangle(frequency)
	default:
		return o.ProcessSine(frequency)
	}
}

// ProcessSine returns sin(2π·phase) and advances the phase.
func (o *Oscillator) ProcessSine(frequency float64) float64 {
	out := math.Sin(2 * math.Pi * o.phase)
	o.advance(frequency)
	return out
}

// ProcessSawtooth returns the naive rising ramp 2·phase-1 and advances the phase.
func (o *Oscillator) ProcessSawtooth(frequency float64) float64 {
	out := 2*o.phase - 1
	o.advance(frequency)
	return out
}

// ProcessSquare returns a 50% duty cycle square (-1 for the first half
// cycle, +1 for the second) and advances the phase.
func (o *Oscillator) ProcessSquare(frequency float64) float64 {
	out := 1.0
	if o.phase < 0.5 {
		out = -1
	}
	o.advance(frequency)
	return out
}

// ProcessTriangle returns a triangle rising from -1 to 1 over the first
// half cycle and falling back over the second, then advances the phase.
func (o *Oscillator) ProcessTriangle(frequency float64) float64 {
	var out float64
	if o.phase < 0.5 {
		out = -1 + 4*o.phase
	} else {
		out = 3 - 4*o.phase
	}
	o.advance(frequency)
	return out
}

func (o *Oscillator) advance(frequency float64) {
	inc := frequency / o.sampleRate
	if math.IsNaN(inc) || math.IsInf(inc, 0) {
		return
	}

	o.phase = wrapPhase(o.phase + inc)
}

// wrapPhase folds p into [0, 1) without truncating toward zero, so negative
// phases wrap to the top of the cycle rather than mirroring.
func wrapPhase(p float64) float64 {
	if p >= maxWrapSteps || p < -maxWrapSteps {
		p -= math.Floor(p)
	}

	for p >= 1 {
		p--
	}
	for p < 0 {
		p++
	}

	// p+1 can round to exactly 1 for tiny negative p.
	if p >= 1 {
		p = 0
	}

	return p
}

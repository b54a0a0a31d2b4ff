package osc

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/signal"
	"github.com/cwbudde/algo-synth/dsp/spectrum"
	"github.com/cwbudde/algo-synth/internal/testutil"
)

const testSampleRate = 44100.0

func newTestOscillator(t *testing.T) *Oscillator {
	t.Helper()
	o, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func render(o *Oscillator, w Waveform, freq float64, n int) []float64 {
	return testutil.Collect(n, func() float64 { return o.Process(w, freq) })
}

func TestNewValidatesSampleRate(t *testing.T) {
	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		if _, err := New(sr); err == nil {
			t.Fatalf("New(%v) expected error", sr)
		}
	}
}

func TestFrequencyAccuracyZeroCrossings(t *testing.T) {
	for _, w := range Waveforms() {
		t.Run(w.String(), func(t *testing.T) {
			o := newTestOscillator(t)
			samples := render(o, w, 440, 44100)

			got := signal.ZeroCrossings(samples)
			if got < 876 || got > 884 {
				t.Fatalf("zero crossings = %d, want 880 ± 4", got)
			}
		})
	}
}

func TestSineSpectralPeak(t *testing.T) {
	o := newTestOscillator(t)
	samples := render(o, Sine, 440, 16384)

	got, err := spectrum.PeakFrequency(samples, testSampleRate)
	if err != nil {
		t.Fatalf("PeakFrequency() error = %v", err)
	}
	if math.Abs(got-440) > 1 {
		t.Fatalf("peak frequency = %.3f, want 440 ± 1", got)
	}
}

func TestSineAmplitude(t *testing.T) {
	o := newTestOscillator(t)
	samples := render(o, Sine, 440, 1000)

	peak := signal.Peak(samples)
	if math.Abs(peak-1) > 0.01 {
		t.Fatalf("peak = %v, want 1 ± 0.01", peak)
	}

	rms := signal.RMS(samples)
	if math.Abs(rms-0.707) > 0.05 {
		t.Fatalf("rms = %v, want 0.707 ± 0.05", rms)
	}
}

func TestWaveformRanges(t *testing.T) {
	for _, w := range Waveforms() {
		t.Run(w.String(), func(t *testing.T) {
			o := newTestOscillator(t)
			samples := render(o, w, 100, 2000)

			testutil.RequireBounded(t, samples, -1, 1)
			lo, hi := samples[0], samples[0]
			for _, v := range samples {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
			if hi < 0.9 || lo > -0.9 {
				t.Fatalf("range = [%v, %v], want close to [-1, 1]", lo, hi)
			}
		})
	}
}

func TestWaveformShapes(t *testing.T) {
	// 4 samples per cycle puts the phase at exactly 0, 0.25, 0.5, 0.75.
	const freq = testSampleRate / 4

	tests := []struct {
		w    Waveform
		want []float64
	}{
		{w: Sawtooth, want: []float64{-1, -0.5, 0, 0.5}},
		{w: Square, want: []float64{-1, -1, 1, 1}},
		{w: Triangle, want: []float64{-1, 0, 1, 0}},
		{w: Sine, want: []float64{0, 1, 0, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.w.String(), func(t *testing.T) {
			o := newTestOscillator(t)
			got := render(o, tt.w, freq, 4)
			testutil.RequireSliceNearlyEqual(t, got, tt.want, 1e-12)
		})
	}
}

func TestSquareDutyCycle(t *testing.T) {
	o := newTestOscillator(t)
	samples := render(o, Square, 441, 44100)

	high := 0
	for _, v := range samples {
		if v > 0 {
			high++
		}
	}
	ratio := float64(high) / float64(len(samples))
	if math.Abs(ratio-0.5) > 0.01 {
		t.Fatalf("duty cycle = %v, want 0.5", ratio)
	}
}

func TestZeroFrequencyIsConstant(t *testing.T) {
	for _, w := range Waveforms() {
		o := newTestOscillator(t)
		samples := render(o, w, 0, 256)
		testutil.RequireFinite(t, samples)
		for i, v := range samples {
			if v != samples[0] {
				t.Fatalf("%s: sample %d = %v, want constant %v", w, i, v, samples[0])
			}
		}
	}
}

func TestPathologicalFrequencies(t *testing.T) {
	freqs := []float64{
		-440,
		testSampleRate / 2,
		testSampleRate,
		3.7 * testSampleRate,
		-1e9,
		1e15,
		math.MaxFloat64,
		math.Inf(1),
		math.Inf(-1),
		math.NaN(),
	}

	for _, w := range Waveforms() {
		for _, f := range freqs {
			o := newTestOscillator(t)
			samples := render(o, w, f, 512)
			testutil.RequireFinite(t, samples)
			testutil.RequireBounded(t, samples, -1, 1)

			if p := o.Phase(); p < 0 || p >= 1 {
				t.Fatalf("%s @ %v Hz: phase = %v, want [0, 1)", w, f, p)
			}
		}
	}
}

func TestNegativeFrequencyReversesDirection(t *testing.T) {
	fwd := newTestOscillator(t)
	rev := newTestOscillator(t)

	a := render(fwd, Sawtooth, 1000, 64)
	b := render(rev, Sawtooth, -1000, 64)

	// The reversed sawtooth starts at -1 like the forward one, then
	// immediately wraps to the top of the cycle and descends.
	if b[1] <= b[2] {
		t.Fatalf("reverse ramp not descending: %v then %v", b[1], b[2])
	}
	if a[1] >= a[2] {
		t.Fatalf("forward ramp not ascending: %v then %v", a[1], a[2])
	}
}

func TestWrapPhase(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.25, 0.25},
		{-0.25, 0.75},
		{-1, 0},
		{-2.5, 0.5},
		{1e6 + 0.5, 0.5},
		{-1e6 - 0.25, 0.75},
		{-1e-18, 0},
	}

	for _, tt := range tests {
		got := wrapPhase(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("wrapPhase(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 1 {
			t.Fatalf("wrapPhase(%v) = %v outside [0, 1)", tt.in, got)
		}
	}
}

func TestResetRestartsCycle(t *testing.T) {
	o := newTestOscillator(t)
	first := render(o, Sine, 523.25, 100)

	o.Reset()
	if o.Phase() != 0 {
		t.Fatalf("phase after Reset = %v, want 0", o.Phase())
	}

	second := render(o, Sine, 523.25, 100)
	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}

func TestLongRunPhaseStability(t *testing.T) {
	// A minute of A4 must still land on the analytic phase.
	o := newTestOscillator(t)
	const n = 60 * 44100
	for i := 0; i < n; i++ {
		o.ProcessSine(440)
	}

	want := math.Mod(440*float64(n)/testSampleRate, 1)
	diff := math.Abs(o.Phase() - want)
	if diff > 0.5 {
		diff = 1 - diff
	}
	if diff > 1e-6 {
		t.Fatalf("phase drift = %v cycles, want < 1e-6", diff)
	}
}

func TestSampleRateAccessor(t *testing.T) {
	o := newTestOscillator(t)
	if o.SampleRate() != testSampleRate {
		t.Fatalf("SampleRate() = %v, want %v", o.SampleRate(), testSampleRate)
	}
}

func BenchmarkProcessSine(b *testing.B) {
	o, _ := New(48000)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = o.ProcessSine(440)
	}
}

func BenchmarkProcessSawtooth(b *testing.B) {
	o, _ := New(48000)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = o.ProcessSawtooth(440)
	}
}

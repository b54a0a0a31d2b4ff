package spectrum

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// minPeakSamples is the shortest input PeakFrequency accepts.
const minPeakSamples = 16

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	buf.data = core.EnsureLen(buf.data, need)
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Power returns |X[k]|^2 for each complex spectrum bin.
//
// Scratch buffers are pooled internally, so in steady state this allocates
// only the output slice.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	PowerFromParts(out, re, im)
	putScratch(buf)
	return out
}

// PowerFromParts computes |X[k]|^2 = re[k]^2 + im[k]^2 into dst.
// All three slices must have the same length.
func PowerFromParts(dst, re, im []float64) {
	vecmath.Power(dst, re, im)
}

// PeakFrequency estimates the dominant frequency of samples in Hz.
//
// The input is Hann-windowed, zero-padded to the next power of two and
// transformed with a forward FFT. The strongest bin above DC is refined by
// parabolic interpolation over the log power of its neighbours, which gives
// sub-bin accuracy for steady tones.
func PeakFrequency(samples []float64, sampleRate float64) (float64, error) {
	if len(samples) < minPeakSamples {
		return 0, fmt.Errorf("peak frequency needs at least %d samples: %d", minPeakSamples, len(samples))
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("peak frequency sample rate must be positive and finite: %f", sampleRate)
	}

	n := nextPow2(len(samples))

	windowed := make([]float64, len(samples))
	copy(windowed, samples)
	vecmath.MulBlockInPlace(windowed, hann(len(samples)))

	in := make([]complex128, n)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return 0, fmt.Errorf("peak frequency fft plan: %w", err)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return 0, fmt.Errorf("peak frequency fft: %w", err)
	}

	half := n / 2
	power := Power(out[:half+1])

	peak := 1
	for k := 2; k < half; k++ {
		if power[k] > power[peak] {
			peak = k
		}
	}
	if power[peak] == 0 {
		return 0, nil
	}

	offset := parabolicOffset(power[peak-1], power[peak], power[peak+1])

	return (float64(peak) + offset) * sampleRate / float64(n), nil
}

// parabolicOffset fits a parabola through three log-power points and returns
// the vertex offset from the centre bin, in bins.
func parabolicOffset(left, centre, right float64) float64 {
	const floor = 1e-300

	a := math.Log(math.Max(left, floor))
	b := math.Log(math.Max(centre, floor))
	c := math.Log(math.Max(right, floor))

	denom := a - 2*b + c
	if denom == 0 {
		return 0
	}

	offset := 0.5 * (a - c) / denom
	if offset > 0.5 || offset < -0.5 {
		return 0
	}
	return offset
}

func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

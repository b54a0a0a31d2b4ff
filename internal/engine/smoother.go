package engine

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

const settleEpsilon = 1e-9

// smoother is a one-pole parameter smoother.
type smoother struct {
	current float64
	target  float64
	coef    float64
}

func newSmoother(sampleRate, timeMs, initial float64) smoother {
	s := smoother{current: initial, target: initial, coef: 1}
	if timeMs > 0 {
		tauSeconds := timeMs / 1000
		s.coef = 1 - math.Exp(-1/(tauSeconds*sampleRate))
		if s.coef < 0 {
			s.coef = 0
		}
		if s.coef > 1 {
			s.coef = 1
		}
	}
	return s
}

func (s *smoother) setTarget(v float64) { s.target = v }

func (s *smoother) snap(v float64) {
	s.current = v
	s.target = v
}

func (s *smoother) settled() bool { return s.current == s.target }

func (s *smoother) next() float64 {
	s.current += (s.target - s.current) * s.coef
	if math.Abs(s.target-s.current) < settleEpsilon {
		s.current = s.target
	}
	return s.current
}

// apply writes src scaled by the smoothed value into dst.
func (s *smoother) apply(dst, src []float64) {
	if s.settled() {
		vecmath.ScaleBlock(dst, src, s.current)
		return
	}
	for i, x := range src {
		dst[i] = x * s.next()
	}
}

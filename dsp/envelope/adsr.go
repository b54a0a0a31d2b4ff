package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultAttackMs  = 10.0
	defaultDecayMs   = 100.0
	defaultSustain   = 0.7
	defaultReleaseMs = 100.0
)

// ADSR is a linear attack/decay/sustain/release envelope producing a gain in
// [0, velocity] per sample.
//
// Stage lengths are cached as fractional sample counts. Each stage ramps
// linearly from its start value to its target, snapping to the exact target
// on the last sample so that float error never accumulates across stages.
// NoteOn always hard-restarts from zero, including during release.
//
// Parameter setters may be called at any time; a change takes effect on the
// next stage that reads it. This implementation is single-threaded and
// allocation free.
type ADSR struct {
	sampleRate float64

	attackSamples  float64
	decaySamples   float64
	releaseSamples float64
	sustainLevel   float64

	state        State
	value        float64
	phaseSample  float64
	velocity     float64
	releaseStart float64
}

// New creates an idle envelope with default timing: 10 ms attack,
// 100 ms decay, 0.7 sustain, 100 ms release.
// Sample rate must be positive and finite.
func New(sampleRate float64) (*ADSR, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("envelope sample rate must be positive and finite: %f", sampleRate)
	}

	e := &ADSR{
		sampleRate:   sampleRate,
		sustainLevel: defaultSustain,
		velocity:     1,
	}
	e.SetAttack(defaultAttackMs)
	e.SetDecay(defaultDecayMs)
	e.SetRelease(defaultReleaseMs)

	return e, nil
}

// SetAttack sets the attack time in milliseconds. Negative or NaN values
// mean an instantaneous attack.
func (e *ADSR) SetAttack(ms float64) {
	e.attackSamples = core.MsToSamples(ms, e.sampleRate)
}

// SetDecay sets the decay time in milliseconds. Negative or NaN values
// mean an instantaneous decay.
func (e *ADSR) SetDecay(ms float64) {
	e.decaySamples = core.MsToSamples(ms, e.sampleRate)
}

// SetSustain sets the sustain level as a fraction of velocity, clamped to [0, 1].
func (e *ADSR) SetSustain(level float64) {
	e.sustainLevel = core.Clamp01(level)
}

// SetRelease sets the release time in milliseconds. Negative or NaN values
// mean an instantaneous release.
func (e *ADSR) SetRelease(ms float64) {
	e.releaseSamples = core.MsToSamples(ms, e.sampleRate)
}

// AttackSamples returns the cached attack length in samples.
func (e *ADSR) AttackSamples() float64 { return e.attackSamples }

// DecaySamples returns the cached decay length in samples.
func (e *ADSR) DecaySamples() float64 { return e.decaySamples }

// ReleaseSamples returns the cached release length in samples.
func (e *ADSR) ReleaseSamples() float64 { return e.releaseSamples }

// SustainLevel returns the sustain level in [0, 1].
func (e *ADSR) SustainLevel() float64 { return e.sustainLevel }

// NoteOn restarts the envelope from zero with the given velocity, clamped
// to [0, 1].
func (e *ADSR) NoteOn(velocity float64) {
	e.velocity = core.Clamp01(velocity)
	e.state = Attack
	e.phaseSample = 0
	e.value = 0
}

// NoteOff enters the release stage from the current value. It has no effect
// on an idle or already releasing envelope.
func (e *ADSR) NoteOff() {
	if e.state == Idle || e.state == Release {
		return
	}
	e.releaseStart = e.value
	e.enter(Release)
}

// Process advances the envelope by one sample and returns its value.
func (e *ADSR) Process() float64 {
	for {
		switch e.state {
		case Attack:
			if e.attackSamples <= 0 {
				e.value = e.velocity
				e.enter(Decay)
				continue
			}
			e.ramp(0, e.velocity, e.attackSamples, Decay)
			return e.value

		case Decay:
			target := e.sustainLevel * e.velocity
			if e.decaySamples <= 0 {
				e.value = target
				e.enter(Sustain)
				return e.value
			}
			e.ramp(e.velocity, target, e.decaySamples, Sustain)
			return e.value

		case Sustain:
			e.value = e.sustainLevel * e.velocity
			return e.value

		case Release:
			if e.releaseSamples <= 0 {
				e.value = 0
				e.enter(Idle)
				return e.value
			}
			e.ramp(e.releaseStart, 0, e.releaseSamples, Idle)
			return e.value

		default:
			e.value = 0
			return e.value
		}
	}
}

// ProcessBlock fills dst with consecutive envelope values.
func (e *ADSR) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = e.Process()
	}
}

// ramp writes one linear step from start toward target over length samples
// and moves to next once the stage is complete, snapping to target.
func (e *ADSR) ramp(start, target, length float64, next State) {
	progress := e.phaseSample / length
	e.value = start + (target-start)*progress

	e.phaseSample++
	if e.phaseSample >= length {
		e.value = target
		e.enter(next)
	}
}

func (e *ADSR) enter(s State) {
	e.state = s
	e.phaseSample = 0
	if s == Idle {
		e.value = 0
	}
}

// Value returns the most recent output without advancing.
func (e *ADSR) Value() float64 {
	return e.value
}

// Velocity returns the clamped velocity of the current note.
func (e *ADSR) Velocity() float64 {
	return e.velocity
}

// State returns the current stage.
func (e *ADSR) State() State {
	return e.state
}

// IsActive reports whether the envelope is in any stage other than Idle.
func (e *ADSR) IsActive() bool {
	return e.state != Idle
}

// Reset forces the envelope to Idle at zero without a release tail.
func (e *ADSR) Reset() {
	e.state = Idle
	e.value = 0
	e.phaseSample = 0
	e.releaseStart = 0
}

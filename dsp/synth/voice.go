package synth

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// VoiceState is the allocation state of a Voice as seen by the manager.
type VoiceState int

const (
	// VoiceIdle means the slot is free.
	VoiceIdle VoiceState = iota
	// VoiceActive covers the attack, decay and sustain stages.
	VoiceActive
	// VoiceReleasing means the note was released and its tail is sounding.
	VoiceReleasing
)

// String returns the lower-case state name.
func (s VoiceState) String() string {
	switch s {
	case VoiceIdle:
		return "idle"
	case VoiceActive:
		return "active"
	case VoiceReleasing:
		return "releasing"
	default:
		return fmt.Sprintf("VoiceState(%d)", int(s))
	}
}

// Voice is one oscillator/envelope pair bound to a note.
type Voice struct {
	note      int
	frequency float64
	state     VoiceState
	age       uint64
	waveform  osc.Waveform

	osc *osc.Oscillator
	env *envelope.ADSR
}

// NewVoice creates an idle sine voice.
func NewVoice(sampleRate float64) (*Voice, error) {
	v := &Voice{}
	if err := v.init(sampleRate); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Voice) init(sampleRate float64) error {
	o, err := osc.New(sampleRate)
	if err != nil {
		return fmt.Errorf("voice oscillator: %w", err)
	}
	env, err := envelope.New(sampleRate)
	if err != nil {
		return fmt.Errorf("voice envelope: %w", err)
	}
	v.osc = o
	v.env = env
	v.waveform = osc.Sine
	return nil
}

// NoteOn starts note with the given velocity. The oscillator phase is reset
// and the envelope restarts from zero, so a retriggered voice begins exactly
// like a fresh one.
func (v *Voice) NoteOn(note int, velocity float64) {
	v.note = note
	v.frequency = NoteToFrequency(note)
	v.osc.Reset()
	v.env.NoteOn(velocity)
	v.state = VoiceActive
}

// NoteOff moves an active voice into its release stage.
func (v *Voice) NoteOff() {
	if v.state == VoiceIdle {
		return
	}
	v.state = VoiceReleasing
	v.env.NoteOff()
}

// Process returns the next output sample. A voice whose envelope has
// finished becomes idle and returns 0.
func (v *Voice) Process() float64 {
	if !v.env.IsActive() {
		v.state = VoiceIdle
		return 0
	}
	s := v.osc.Process(v.waveform, v.frequency)
	return s * v.env.Process()
}

// Reset silences the voice immediately without a release tail.
func (v *Voice) Reset() {
	v.env.Reset()
	v.osc.Reset()
	v.state = VoiceIdle
	v.age = 0
}

// SetWaveform selects the oscillator waveform for subsequent samples.
func (v *Voice) SetWaveform(w osc.Waveform) {
	v.waveform = w
}

// Waveform returns the selected waveform.
func (v *Voice) Waveform() osc.Waveform { return v.waveform }

// Note returns the note the voice was last started with.
func (v *Voice) Note() int { return v.note }

// Frequency returns the oscillator frequency in Hz for the current note.
func (v *Voice) Frequency() float64 { return v.frequency }

// State returns the allocation state.
func (v *Voice) State() VoiceState { return v.state }

// Age returns the allocation stamp assigned by the manager.
func (v *Voice) Age() uint64 { return v.age }

// Level returns the most recent envelope value.
func (v *Voice) Level() float64 { return v.env.Value() }

// SetAttack sets the envelope attack time in milliseconds.
func (v *Voice) SetAttack(ms float64) { v.env.SetAttack(ms) }

// SetDecay sets the envelope decay time in milliseconds.
func (v *Voice) SetDecay(ms float64) { v.env.SetDecay(ms) }

// SetSustain sets the envelope sustain level, clamped to [0, 1].
func (v *Voice) SetSustain(level float64) { v.env.SetSustain(level) }

// SetRelease sets the envelope release time in milliseconds.
func (v *Voice) SetRelease(ms float64) { v.env.SetRelease(ms) }

// EnvelopeState returns the stage of the underlying envelope.
func (v *Voice) EnvelopeState() envelope.State { return v.env.State() }

// IsActive reports whether the envelope is still producing output.
func (v *Voice) IsActive() bool { return v.env.IsActive() }

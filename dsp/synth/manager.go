package synth

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// VoiceInfo is a read-only view of one voice slot.
type VoiceInfo struct {
	Note  int
	State VoiceState
	Age   uint64
	Level float64
}

// VoiceManager routes note events to a fixed pool of voices and mixes them.
type VoiceManager struct {
	sampleRate float64
	voices     []Voice
	ageCounter uint64
}

// NewVoiceManager allocates maxVoices idle voices.
// Sample rate must be positive and finite; maxVoices must be at least 1.
func NewVoiceManager(sampleRate float64, maxVoices int) (*VoiceManager, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("voice manager sample rate must be positive and finite: %f", sampleRate)
	}
	if maxVoices < 1 {
		return nil, fmt.Errorf("voice manager max voices must be >= 1: %d", maxVoices)
	}

	m := &VoiceManager{
		sampleRate: sampleRate,
		voices:     make([]Voice, maxVoices),
	}
	for i := range m.voices {
		if err := m.voices[i].init(sampleRate); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SampleRate returns the sample rate in Hz.
func (m *VoiceManager) SampleRate() float64 { return m.sampleRate }

// MaxVoices returns the size of the voice pool.
func (m *VoiceManager) MaxVoices() int { return len(m.voices) }

// NoteOn starts note and returns the index of the slot that plays it.
// It never fails: when every slot is busy a voice is stolen.
func (m *VoiceManager) NoteOn(note int, velocity float64) int {
	idx := m.allocate(note)
	v := &m.voices[idx]
	v.NoteOn(note, velocity)
	v.age = m.ageCounter
	m.ageCounter++
	return idx
}

func (m *VoiceManager) allocate(note int) int {
	for i := range m.voices {
		if m.voices[i].state != VoiceIdle && m.voices[i].note == note {
			return i
		}
	}
	for i := range m.voices {
		if m.voices[i].state == VoiceIdle {
			return i
		}
	}
	if i := m.oldest(VoiceReleasing); i >= 0 {
		return i
	}
	return m.oldest(VoiceActive)
}

func (m *VoiceManager) oldest(state VoiceState) int {
	idx := -1
	for i := range m.voices {
		v := &m.voices[i]
		if v.state != state {
			continue
		}
		if idx < 0 || v.age < m.voices[idx].age {
			idx = i
		}
	}
	return idx
}

// NoteOff releases every active voice holding note.
func (m *VoiceManager) NoteOff(note int) {
	for i := range m.voices {
		v := &m.voices[i]
		if v.state == VoiceActive && v.note == note {
			v.NoteOff()
		}
	}
}

// AllNotesOff releases every active voice.
func (m *VoiceManager) AllNotesOff() {
	for i := range m.voices {
		if m.voices[i].state == VoiceActive {
			m.voices[i].NoteOff()
		}
	}
}

// Reset silences every voice immediately and restarts the age counter.
func (m *VoiceManager) Reset() {
	for i := range m.voices {
		m.voices[i].Reset()
	}
	m.ageCounter = 0
}

// Process overwrites buf with the mix of all sounding voices.
func (m *VoiceManager) Process(buf []float64) {
	core.Zero(buf)
	for i := range buf {
		for j := range m.voices {
			v := &m.voices[j]
			if v.state == VoiceIdle {
				continue
			}
			buf[i] += v.Process()
		}
	}
}

// ActiveVoiceCount returns the number of non-idle voices, i.e. active plus
// releasing.
func (m *VoiceManager) ActiveVoiceCount() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].state != VoiceIdle {
			n++
		}
	}
	return n
}

// CountState returns the number of voices in state s.
func (m *VoiceManager) CountState(s VoiceState) int {
	n := 0
	for i := range m.voices {
		if m.voices[i].state == s {
			n++
		}
	}
	return n
}

// ReleasingVoiceCount returns the number of voices in their release tail.
func (m *VoiceManager) ReleasingVoiceCount() int {
	return m.CountState(VoiceReleasing)
}

// VoiceStates appends the state of every slot to dst in slot order.
func (m *VoiceManager) VoiceStates(dst []VoiceState) []VoiceState {
	for i := range m.voices {
		dst = append(dst, m.voices[i].state)
	}
	return dst
}

// ActiveNotes appends the notes of all non-idle voices to dst in slot order.
func (m *VoiceManager) ActiveNotes(dst []int) []int {
	for i := range m.voices {
		if m.voices[i].state != VoiceIdle {
			dst = append(dst, m.voices[i].note)
		}
	}
	return dst
}

// Voices appends a view of every slot to dst.
func (m *VoiceManager) Voices(dst []VoiceInfo) []VoiceInfo {
	for i := range m.voices {
		v := &m.voices[i]
		dst = append(dst, VoiceInfo{Note: v.note, State: v.state, Age: v.age, Level: v.Level()})
	}
	return dst
}

// SetWaveform selects the waveform of every voice.
func (m *VoiceManager) SetWaveform(w osc.Waveform) {
	for i := range m.voices {
		m.voices[i].SetWaveform(w)
	}
}

// SetAttack sets the attack time of every voice in milliseconds.
func (m *VoiceManager) SetAttack(ms float64) {
	for i := range m.voices {
		m.voices[i].SetAttack(ms)
	}
}

// SetDecay sets the decay time of every voice in milliseconds.
func (m *VoiceManager) SetDecay(ms float64) {
	for i := range m.voices {
		m.voices[i].SetDecay(ms)
	}
}

// SetSustain sets the sustain level of every voice, clamped to [0, 1].
func (m *VoiceManager) SetSustain(level float64) {
	for i := range m.voices {
		m.voices[i].SetSustain(level)
	}
}

// SetRelease sets the release time of every voice in milliseconds.
func (m *VoiceManager) SetRelease(ms float64) {
	for i := range m.voices {
		m.voices[i].SetRelease(ms)
	}
}

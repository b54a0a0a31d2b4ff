package synth

import "math"

// ReferenceNote is the MIDI note tuned to ReferenceFrequency (A4).
const (
	ReferenceNote      = 69
	ReferenceFrequency = 440.0
)

// NoteToFrequency converts a MIDI note number to Hz in twelve-tone equal
// temperament. Any integer is accepted; notes outside 0..127 simply map to
// frequencies outside the usual musical range.
func NoteToFrequency(note int) float64 {
	return ReferenceFrequency * math.Pow(2, float64(note-ReferenceNote)/12)
}

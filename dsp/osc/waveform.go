package osc

import (
	"fmt"
	"strings"
)

// Waveform selects the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Sawtooth
	Square
	Triangle
)

var waveformNames = [...]string{
	Sine:     "sine",
	Sawtooth: "sawtooth",
	Square:   "square",
	Triangle: "triangle",
}

// Waveforms lists every supported waveform in parameter order.
func Waveforms() []Waveform {
	return []Waveform{Sine, Sawtooth, Square, Triangle}
}

// String returns the lower-case waveform name.
func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// Valid reports whether w is one of the defined waveforms.
func (w Waveform) Valid() bool {
	return w >= Sine && w <= Triangle
}

// ParseWaveform converts a name into a Waveform. It accepts the names
// returned by String plus the short forms "sin", "saw", "sqr" and "tri".
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "square", "sqr":
		return Square, nil
	case "triangle", "tri":
		return Triangle, nil
	default:
		return Sine, fmt.Errorf("unknown waveform %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w Waveform) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid waveform: %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Waveform) UnmarshalText(text []byte) error {
	parsed, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

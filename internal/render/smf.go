package render

import (
	"fmt"
	"io"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/internal/engine"
)

// LoadSMF reads every track of a Standard MIDI File and returns its note
// events ordered by frame. Tempo changes are honoured; channels are merged.
func LoadSMF(r io.Reader, sampleRate float64) ([]engine.Event, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("render sample rate must be positive and finite: %f", sampleRate)
	}

	var events []engine.Event
	err := smf.ReadTracksFrom(r).Do(func(te smf.TrackEvent) {
		frame := microsToFrames(te.AbsMicroSeconds, sampleRate)
		if ev, ok := engine.EventFromMessage(midi.Message(te.Message), frame); ok {
			events = append(events, ev)
		}
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}

	// Tracks arrive one after another; a stable sort keeps each track's
	// same-frame order (a note-off before a re-strike stays first).
	slices.SortStableFunc(events, func(a, b engine.Event) int {
		switch {
		case a.Frame < b.Frame:
			return -1
		case a.Frame > b.Frame:
			return 1
		}
		return 0
	})
	return events, nil
}

func microsToFrames(us int64, sampleRate float64) int64 {
	return int64(math.Round(float64(us) * sampleRate / 1e6))
}

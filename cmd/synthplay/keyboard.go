package main

import (
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/internal/engine"
)

// Tracker layout: the lower letter row plays the base octave, the upper row
// the octave above.
var keyOffsets = map[byte]int{
	'z': 0, 's': 1, 'x': 2, 'd': 3, 'c': 4, 'v': 5, 'g': 6, 'b': 7, 'h': 8, 'n': 9, 'j': 10, 'm': 11, ',': 12,
	'q': 12, '2': 13, 'w': 14, '3': 15, 'e': 16, 'r': 17, '5': 18, 't': 19, '6': 20, 'y': 21, '7': 22, 'u': 23, 'i': 24,
}

const (
	keyCtrlC  = 3
	keyEscape = 27
)

func keyToNote(b byte, baseNote int) (int, bool) {
	off, ok := keyOffsets[b]
	if !ok {
		return 0, false
	}
	return baseNote + off, true
}

// keyboardInput plays notes from a raw-mode terminal. Terminals report no
// key release, so every key press sounds for noteLen.
type keyboardInput struct {
	eng      *engine.Engine
	baseNote int
	velocity float64
	noteLen  time.Duration
	params   engine.Params
}

// run blocks until the user quits or stdin closes. The terminal is restored
// on return.
func (k *keyboardInput) run() error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if quit := k.handleKey(buf[0]); quit {
			return nil
		}
	}
}

// handleKey applies one key press and reports whether to quit.
func (k *keyboardInput) handleKey(b byte) bool {
	switch b {
	case keyCtrlC, keyEscape:
		return true
	case ' ':
		_ = k.eng.AllNotesOff()
		return false
	case '-':
		k.baseNote = max(k.baseNote-12, 0)
		logger.Info("octave down", "base_note", k.baseNote)
		return false
	case '+', '=':
		k.baseNote = min(k.baseNote+12, 96)
		logger.Info("octave up", "base_note", k.baseNote)
		return false
	case '!', '@', '#', '$':
		k.params.Waveform = osc.Waveforms()[waveKey(b)]
		k.eng.SetParams(k.params)
		logger.Info("waveform", "waveform", k.params.Waveform)
		return false
	}

	note, ok := keyToNote(b, k.baseNote)
	if !ok {
		return false
	}
	k.play(note)
	return false
}

func waveKey(b byte) int {
	switch b {
	case '@':
		return 1
	case '#':
		return 2
	case '$':
		return 3
	}
	return 0
}

func (k *keyboardInput) play(note int) {
	start := k.eng.Frame()
	length := int64(k.noteLen.Seconds() * k.eng.SampleRate())
	if err := k.eng.Schedule(engine.Event{Frame: start, Kind: engine.EventNoteOn, Note: note, Velocity: k.velocity}); err != nil {
		logger.Warn("note dropped", "note", note, "err", err)
		return
	}
	if err := k.eng.Schedule(engine.Event{Frame: start + length, Kind: engine.EventNoteOff, Note: note}); err != nil {
		logger.Warn("note-off dropped", "note", note, "err", err)
	}
	logger.Debug("key note", "note", note, "frame", start)
}

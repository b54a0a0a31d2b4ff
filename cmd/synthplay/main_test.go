package main

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/internal/engine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(48000, engine.WithBlockSize(64))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return eng
}

func TestKeyToNote(t *testing.T) {
	tests := []struct {
		key  byte
		want int
		ok   bool
	}{
		{'z', 48, true},
		{'s', 49, true},
		{'m', 59, true},
		{'q', 60, true},
		{',', 60, true},
		{'i', 72, true},
		{'a', 0, false},
		{'1', 0, false},
	}
	for _, tt := range tests {
		got, ok := keyToNote(tt.key, 48)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("keyToNote(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestHandleKeySchedulesFixedLengthNote(t *testing.T) {
	eng := newTestEngine(t)
	kb := &keyboardInput{eng: eng, baseNote: 48, velocity: 1, noteLen: 10 * time.Millisecond, params: eng.Params()}

	if quit := kb.handleKey('q'); quit {
		t.Fatal("note key requested quit")
	}
	if got := eng.Pending(); got != 2 {
		t.Fatalf("pending events = %d, want note-on and note-off", got)
	}

	eng.Process(make([]float64, 256))
	if got := eng.ActiveVoices(); got != 1 {
		t.Fatalf("active voices = %d, want 1", got)
	}
	if got := eng.Pending(); got != 1 {
		t.Fatalf("pending after first block = %d, want 1", got)
	}

	// 10 ms at 48 kHz is 480 frames; the note-off must have fired by then.
	eng.Process(make([]float64, 512))
	if got := eng.Pending(); got != 0 {
		t.Fatalf("pending = %d, want 0", got)
	}
}

func TestHandleKeyControls(t *testing.T) {
	eng := newTestEngine(t)
	kb := &keyboardInput{eng: eng, baseNote: 48, velocity: 1, noteLen: time.Second, params: eng.Params()}

	kb.handleKey('+')
	if kb.baseNote != 60 {
		t.Fatalf("baseNote after + = %d, want 60", kb.baseNote)
	}
	kb.handleKey('-')
	kb.handleKey('-')
	if kb.baseNote != 36 {
		t.Fatalf("baseNote after -- = %d, want 36", kb.baseNote)
	}

	kb.handleKey('#')
	if got := eng.Params().Waveform; got != osc.Square {
		t.Fatalf("waveform = %v, want square", got)
	}

	for _, b := range []byte{keyEscape, keyCtrlC} {
		if !kb.handleKey(b) {
			t.Fatalf("key %d did not quit", b)
		}
	}
}

func TestEnginePlayerRead(t *testing.T) {
	eng := newTestEngine(t)
	p := newEnginePlayer(eng)

	_ = eng.NoteOn(69, 1)
	b := make([]byte, 4*1000+3)
	n, err := p.Read(b)
	if err != nil || n != 4000 {
		t.Fatalf("Read() = %d, %v; want 4000, nil", n, err)
	}

	nonZero := false
	for i := 0; i < n; i += 4 {
		s := math.Float32frombits(binary.LittleEndian.Uint32(b[i:]))
		if s < -1 || s > 1 || s != s {
			t.Fatalf("sample %d = %v outside [-1, 1]", i/4, s)
		}
		if s != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("player produced silence for a held note")
	}
	if got := eng.Frame(); got != 1000 {
		t.Fatalf("engine frame = %d, want 1000", got)
	}
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"waveform":"square","release_ms":42}`)
	f.Close()

	p, err := loadParams(path, "tri")
	if err != nil {
		t.Fatalf("loadParams() error = %v", err)
	}
	if p.Waveform != osc.Triangle || p.ReleaseMs != 42 {
		t.Fatalf("loadParams() = %+v", p)
	}

	if _, err := loadParams(path, "noise"); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
	if _, err := loadParams(filepath.Join(t.TempDir(), "missing.json"), ""); err == nil {
		t.Fatal("expected error for missing preset")
	}
}

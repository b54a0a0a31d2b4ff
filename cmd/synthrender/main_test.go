package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/internal/engine"
	"github.com/cwbudde/algo-synth/internal/render"
)

func TestApplyOverrides(t *testing.T) {
	nan := math.NaN()
	p, err := applyOverrides(engine.DefaultParams(), "tri", overrides{
		gainDB: -12, attackMs: nan, decayMs: nan, sustain: 0.25, releaseMs: nan,
	})
	if err != nil {
		t.Fatalf("applyOverrides() error = %v", err)
	}
	want := engine.DefaultParams()
	want.Waveform = osc.Triangle
	want.GainDB = -12
	want.Sustain = 0.25
	if p != want {
		t.Fatalf("applyOverrides() = %+v, want %+v", p, want)
	}

	if _, err := applyOverrides(engine.DefaultParams(), "noise", overrides{nan, nan, nan, nan, nan}); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
	if _, err := applyOverrides(engine.DefaultParams(), "", overrides{nan, nan, nan, 4, nan}); err == nil {
		t.Fatal("expected error for sustain out of range")
	}
}

func TestPresetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.json")
	want := engine.DefaultParams()
	want.Waveform = osc.Square
	want.ReleaseMs = 900

	if err := saveParams(path, want); err != nil {
		t.Fatalf("saveParams() error = %v", err)
	}
	got, err := loadParams(path)
	if err != nil {
		t.Fatalf("loadParams() error = %v", err)
	}
	if got != want {
		t.Fatalf("loadParams() = %+v, want %+v", got, want)
	}

	if got, err := loadParams(""); err != nil || got != engine.DefaultParams() {
		t.Fatalf("loadParams(\"\") = %+v, %v", got, err)
	}
}

func TestRunWritesWAV(t *testing.T) {
	dir := t.TempDir()
	midPath := filepath.Join(dir, "in.mid")
	wavPath := filepath.Join(dir, "out.wav")

	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(0, midi.NoteOn(0, 67, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOff(0, 67))
	tr.Close(0)
	s := smf.New()
	if err := s.Add(tr); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(midPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if err := run(midPath, wavPath, 16, render.DefaultOptions()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	info, err := os.Stat(wavPath)
	if err != nil {
		t.Fatal(err)
	}
	// Quarter of a second plus release at 48 kHz, 16-bit mono.
	if info.Size() < 44+2*12000 {
		t.Fatalf("wav size = %d bytes, want at least %d", info.Size(), 44+2*12000)
	}

	if err := run(filepath.Join(dir, "missing.mid"), wavPath, 16, render.DefaultOptions()); err == nil {
		t.Fatal("expected error for missing input")
	}
}

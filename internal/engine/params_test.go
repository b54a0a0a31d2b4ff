package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/osc"
)

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"waveform", func(p *Params) { p.Waveform = osc.Waveform(-1) }},
		{"gain low", func(p *Params) { p.GainDB = -31 }},
		{"gain high", func(p *Params) { p.GainDB = 6.5 }},
		{"attack", func(p *Params) { p.AttackMs = 0 }},
		{"decay", func(p *Params) { p.DecayMs = 2001 }},
		{"sustain", func(p *Params) { p.Sustain = -0.1 }},
		{"release", func(p *Params) { p.ReleaseMs = 5001 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Fatal("expected error")
			}
			if err := p.Clamped().Validate(); err != nil {
				t.Fatalf("Clamped().Validate() error = %v", err)
			}
		})
	}
}

func TestParamsJSONRoundTrip(t *testing.T) {
	want := Params{
		Waveform:  osc.Triangle,
		GainDB:    -6,
		AttackMs:  2.5,
		DecayMs:   250,
		Sustain:   0.4,
		ReleaseMs: 1200,
	}

	var buf bytes.Buffer
	if err := SaveParamsJSON(&buf, want); err != nil {
		t.Fatalf("SaveParamsJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"waveform": "triangle"`) {
		t.Fatalf("waveform not encoded by name:\n%s", buf.String())
	}

	got, err := LoadParamsJSON(&buf)
	if err != nil {
		t.Fatalf("LoadParamsJSON() error = %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoadParamsJSON(t *testing.T) {
	got, err := LoadParamsJSON(strings.NewReader(`{"waveform":"saw","release_ms":50}`))
	if err != nil {
		t.Fatalf("LoadParamsJSON() error = %v", err)
	}
	want := DefaultParams()
	want.Waveform = osc.Sawtooth
	want.ReleaseMs = 50
	if got != want {
		t.Fatalf("partial preset = %+v, want %+v", got, want)
	}

	for _, doc := range []string{
		`{"cutoff": 1000}`,
		`{"sustain": 3}`,
		`{"waveform": "noise"}`,
		`not json`,
	} {
		if _, err := LoadParamsJSON(strings.NewReader(doc)); err == nil {
			t.Fatalf("LoadParamsJSON(%s) expected error", doc)
		}
	}
}

package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

// Parameter ranges exposed to hosts.
const (
	MinGainDB = -30.0
	MaxGainDB = 6.0

	MinAttackMs = 0.1
	MaxAttackMs = 2000.0

	MinDecayMs = 0.1
	MaxDecayMs = 2000.0

	MinReleaseMs = 0.1
	MaxReleaseMs = 5000.0
)

// Params is the host-facing synth configuration. It is applied uniformly to
// every voice at the start of the next rendered block.
type Params struct {
	Waveform  osc.Waveform `json:"waveform"`
	GainDB    float64      `json:"gain_db"`
	AttackMs  float64      `json:"attack_ms"`
	DecayMs   float64      `json:"decay_ms"`
	Sustain   float64      `json:"sustain"`
	ReleaseMs float64      `json:"release_ms"`
}

// DefaultParams returns the factory preset.
func DefaultParams() Params {
	return Params{
		Waveform:  osc.Sine,
		GainDB:    0,
		AttackMs:  10,
		DecayMs:   100,
		Sustain:   0.7,
		ReleaseMs: 300,
	}
}

// Validate reports the first parameter outside its range.
func (p Params) Validate() error {
	if !p.Waveform.Valid() {
		return fmt.Errorf("engine waveform is invalid: %d", int(p.Waveform))
	}
	if err := checkRange("gain", p.GainDB, MinGainDB, MaxGainDB); err != nil {
		return err
	}
	if err := checkRange("attack", p.AttackMs, MinAttackMs, MaxAttackMs); err != nil {
		return err
	}
	if err := checkRange("decay", p.DecayMs, MinDecayMs, MaxDecayMs); err != nil {
		return err
	}
	if err := checkRange("sustain", p.Sustain, 0, 1); err != nil {
		return err
	}
	return checkRange("release", p.ReleaseMs, MinReleaseMs, MaxReleaseMs)
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) {
		return fmt.Errorf("engine %s must be in [%g, %g]: %f", name, lo, hi, v)
	}
	return nil
}

// Clamped returns p with every field forced into range. NaN fields and an
// unknown waveform fall back to the defaults.
func (p Params) Clamped() Params {
	def := DefaultParams()
	if !p.Waveform.Valid() {
		p.Waveform = def.Waveform
	}
	p.GainDB = clampOr(p.GainDB, MinGainDB, MaxGainDB, def.GainDB)
	p.AttackMs = clampOr(p.AttackMs, MinAttackMs, MaxAttackMs, def.AttackMs)
	p.DecayMs = clampOr(p.DecayMs, MinDecayMs, MaxDecayMs, def.DecayMs)
	p.Sustain = clampOr(p.Sustain, 0, 1, def.Sustain)
	p.ReleaseMs = clampOr(p.ReleaseMs, MinReleaseMs, MaxReleaseMs, def.ReleaseMs)
	return p
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return core.Clamp(v, lo, hi)
}

// LoadParamsJSON decodes a preset. Fields missing from the document keep
// their default value; unknown fields and out-of-range values are errors.
func LoadParamsJSON(r io.Reader) (Params, error) {
	p := DefaultParams()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Params{}, fmt.Errorf("decode params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// SaveParamsJSON writes p as indented JSON.
func SaveParamsJSON(w io.Writer, p Params) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	return nil
}

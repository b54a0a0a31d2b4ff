package main

import (
	"encoding/binary"
	"math"

	"github.com/cwbudde/algo-synth/internal/engine"
)

// enginePlayer adapts an engine to the io.Reader oto pulls float32 LE
// frames from.
type enginePlayer struct {
	eng *engine.Engine
	buf []float32
}

func newEnginePlayer(eng *engine.Engine) *enginePlayer {
	return &enginePlayer{eng: eng, buf: make([]float32, 4096)}
}

func (p *enginePlayer) Read(b []byte) (int, error) {
	n := len(b) / 4
	if n == 0 {
		return 0, nil
	}
	if len(p.buf) < n {
		p.buf = make([]float32, n)
	}
	samples := p.buf[:n]
	p.eng.Render(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}

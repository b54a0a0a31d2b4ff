package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// WriteWAV encodes samples as mono integer PCM. Samples are clamped to
// [-1, 1]; bitDepth must be 16 or 24.
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("wav bit depth must be 16 or 24: %d", bitDepth)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("wav sample rate must be > 0: %d", sampleRate)
	}

	scale := float64(int(1)<<(bitDepth-1) - 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		if math.IsNaN(s) {
			s = 0
		}
		buf.Data[i] = int(math.Round(core.Clamp(s, -1, 1) * scale))
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

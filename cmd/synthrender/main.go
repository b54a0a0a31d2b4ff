// Command synthrender renders a Standard MIDI File to a mono WAV file.
//
// Usage:
//
//	synthrender [flags] -in song.mid -out song.wav
//
// Examples:
//
//	synthrender -in song.mid -out song.wav
//	synthrender -in song.mid -out song.wav -waveform saw -release 800
//	synthrender -in song.mid -out song.wav -preset pad.json -normalize -1
//	synthrender -waveform square -attack 2 -save-preset lead.json
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/internal/engine"
	"github.com/cwbudde/algo-synth/internal/render"
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	in := flag.String("in", "", "input Standard MIDI File")
	out := flag.String("out", "out.wav", "output WAV path")
	sampleRate := flag.Int("rate", 48000, "output sample rate in Hz")
	bits := flag.Int("bits", 16, "output bit depth (16 or 24)")
	voices := flag.Int("voices", 16, "polyphony")
	blockSize := flag.Int("block", 512, "render block size in samples")
	presetPath := flag.String("preset", "", "load synth parameters from a JSON preset")
	savePreset := flag.String("save-preset", "", "write the effective parameters to a JSON preset")
	waveform := flag.String("waveform", "", "override waveform (sine, sawtooth, square, triangle)")
	gain := flag.Float64("gain", math.NaN(), "override master gain in dB")
	attack := flag.Float64("attack", math.NaN(), "override attack in ms")
	decay := flag.Float64("decay", math.NaN(), "override decay in ms")
	sustain := flag.Float64("sustain", math.NaN(), "override sustain level 0..1")
	release := flag.Float64("release", math.NaN(), "override release in ms")
	normalize := flag.Float64("normalize", 0, "peak-normalize to this level in dBFS (0 disables)")
	decayDBFS := flag.Float64("decay-dbfs", -90, "tail auto-stop threshold in dBFS")
	holdBlocks := flag.Int("decay-hold-blocks", 6, "consecutive quiet blocks before the tail stops")
	minDuration := flag.Duration("min-duration", 0, "minimum render length")
	maxDuration := flag.Duration("max-duration", 10*time.Minute, "maximum render length")
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: synthrender [flags] -in song.mid -out song.wav\n\n")
		fmt.Fprintf(os.Stderr, "Renders a MIDI file through the polyphonic synth.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	initLogger(*debug)

	params, err := loadParams(*presetPath)
	if err != nil {
		logger.Error("failed to load preset", "path", *presetPath, "err", err)
		os.Exit(1)
	}
	params, err = applyOverrides(params, *waveform, overrides{
		gainDB: *gain, attackMs: *attack, decayMs: *decay, sustain: *sustain, releaseMs: *release,
	})
	if err != nil {
		logger.Error("invalid parameters", "err", err)
		os.Exit(1)
	}

	if *savePreset != "" {
		if err := saveParams(*savePreset, params); err != nil {
			logger.Error("failed to save preset", "path", *savePreset, "err", err)
			os.Exit(1)
		}
		logger.Info("preset written", "path", *savePreset)
		if *in == "" {
			return
		}
	}

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts := render.DefaultOptions()
	opts.SampleRate = float64(*sampleRate)
	opts.BlockSize = *blockSize
	opts.MaxVoices = *voices
	opts.Params = params
	opts.DecayDBFS = *decayDBFS
	opts.HoldBlocks = *holdBlocks
	opts.MinDuration = *minDuration
	opts.MaxDuration = *maxDuration
	opts.Logger = logger
	if *normalize < 0 {
		opts.NormalizePeak = core.DBToLinear(*normalize)
	}

	if err := run(*in, *out, *bits, opts); err != nil {
		logger.Error("render failed", "err", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string, bits int, opts render.Options) error {
	start := time.Now()

	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	events, err := render.LoadSMF(f, opts.SampleRate)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	logger.Info("midi loaded", "path", inPath, "events", len(events))

	res, err := render.Render(events, opts)
	if err != nil {
		return err
	}

	w, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := render.WriteWAV(w, res.Samples, int(opts.SampleRate), bits); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	logger.Info("render complete",
		"out", outPath,
		"duration", res.Duration().Round(time.Millisecond),
		"peak_dbfs", fmt.Sprintf("%.2f", core.LinearToDB(res.Peak)),
		"rms_dbfs", fmt.Sprintf("%.2f", core.LinearToDB(res.RMS)),
		"meter_peak_dbfs", fmt.Sprintf("%.2f", res.MaxMeter.PeakDB),
		"truncated", res.Truncated,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func loadParams(path string) (engine.Params, error) {
	if path == "" {
		return engine.DefaultParams(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return engine.Params{}, err
	}
	defer f.Close()
	return engine.LoadParamsJSON(f)
}

func saveParams(path string, p engine.Params) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := engine.SaveParamsJSON(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// overrides holds flag values; NaN means "not set".
type overrides struct {
	gainDB    float64
	attackMs  float64
	decayMs   float64
	sustain   float64
	releaseMs float64
}

func applyOverrides(p engine.Params, waveform string, o overrides) (engine.Params, error) {
	if waveform != "" {
		w, err := osc.ParseWaveform(waveform)
		if err != nil {
			return engine.Params{}, err
		}
		p.Waveform = w
	}
	set := func(dst *float64, v float64) {
		if !math.IsNaN(v) {
			*dst = v
		}
	}
	set(&p.GainDB, o.gainDB)
	set(&p.AttackMs, o.attackMs)
	set(&p.DecayMs, o.decayMs)
	set(&p.Sustain, o.sustain)
	set(&p.ReleaseMs, o.releaseMs)
	return p, p.Validate()
}

package render

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/signal"
	"github.com/cwbudde/algo-synth/internal/engine"
)

var (
	// ErrNoEvents is returned when there is nothing to render.
	ErrNoEvents = errors.New("render: no note events")
	// ErrInvalidDuration is returned for non-positive or inverted duration limits.
	ErrInvalidDuration = errors.New("render: invalid duration")
)

// Options controls an offline render.
type Options struct {
	SampleRate float64
	BlockSize  int
	MaxVoices  int
	Params     engine.Params

	// The tail stops once HoldBlocks consecutive blocks after the last event
	// peak below DecayDBFS, but never before MinDuration.
	DecayDBFS   float64
	HoldBlocks  int
	MinDuration time.Duration
	MaxDuration time.Duration

	// NormalizePeak rescales the result to this peak when > 0.
	NormalizePeak float64

	Logger *slog.Logger
}

// DefaultOptions returns settings for a 48 kHz render.
func DefaultOptions() Options {
	pc := core.ApplyProcessorOptions(core.WithSampleRate(48000))
	return Options{
		SampleRate:  pc.SampleRate,
		BlockSize:   pc.BlockSize,
		MaxVoices:   pc.MaxVoices,
		Params:      engine.DefaultParams(),
		DecayDBFS:   -90,
		HoldBlocks:  6,
		MaxDuration: 10 * time.Minute,
	}
}

// Result is a rendered mono signal with summary statistics.
type Result struct {
	Samples    []float64
	SampleRate float64
	Events     int
	Truncated  bool
	Peak       float64
	RMS        float64
	// MaxMeter is the loudest engine meter reading seen during the render.
	MaxMeter engine.Levels
}

// Duration returns the rendered length.
func (r Result) Duration() time.Duration {
	return time.Duration(float64(len(r.Samples)) / r.SampleRate * float64(time.Second))
}

// Render plays events through a fresh engine.
func Render(events []engine.Event, opts Options) (Result, error) {
	if len(events) == 0 {
		return Result{}, ErrNoEvents
	}
	if opts.MaxDuration <= 0 || opts.MinDuration < 0 || opts.MinDuration > opts.MaxDuration {
		return Result{}, fmt.Errorf("%w: min %v max %v", ErrInvalidDuration, opts.MinDuration, opts.MaxDuration)
	}
	if opts.HoldBlocks < 1 {
		opts.HoldBlocks = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	eng, err := engine.New(opts.SampleRate,
		engine.WithBlockSize(opts.BlockSize),
		engine.WithMaxVoices(opts.MaxVoices),
		engine.WithParams(opts.Params),
		engine.WithQueueCapacity(len(events)),
		engine.WithLogger(logger),
	)
	if err != nil {
		return Result{}, fmt.Errorf("render engine: %w", err)
	}

	var lastFrame int64
	for _, ev := range events {
		if err := eng.Schedule(ev); err != nil {
			return Result{}, fmt.Errorf("schedule %v at frame %d: %w", ev.Kind, ev.Frame, err)
		}
		lastFrame = max(lastFrame, ev.Frame)
	}

	maxFrames := int64(opts.MaxDuration.Seconds() * opts.SampleRate)
	if maxFrames < 1 {
		return Result{}, fmt.Errorf("%w: max %v is shorter than one sample", ErrInvalidDuration, opts.MaxDuration)
	}
	minFrames := int64(opts.MinDuration.Seconds() * opts.SampleRate)
	threshold := core.DBToLinear(opts.DecayDBFS)

	res := Result{SampleRate: opts.SampleRate, Events: len(events)}
	res.MaxMeter = engine.Levels{PeakDB: engine.MinLevelDB, RMSDB: engine.MinLevelDB}
	out := make([]float64, 0, min(maxFrames, lastFrame+int64(opts.SampleRate)))
	block := make([]float64, eng.BlockSize())

	var frame int64
	quiet := 0
	for frame < maxFrames {
		n := int(min(int64(len(block)), maxFrames-frame))
		eng.Process(block[:n])
		out = append(out, block[:n]...)
		frame += int64(n)

		lv := eng.Levels()
		res.MaxMeter.PeakDB = max(res.MaxMeter.PeakDB, lv.PeakDB)
		res.MaxMeter.RMSDB = max(res.MaxMeter.RMSDB, lv.RMSDB)

		if frame <= lastFrame {
			continue
		}
		if signal.Peak(block[:n]) < threshold || eng.Idle() {
			quiet++
		} else {
			quiet = 0
		}
		if quiet >= opts.HoldBlocks && frame >= minFrames {
			break
		}
	}
	res.Truncated = frame >= maxFrames && !eng.Idle()
	if res.Truncated {
		logger.Warn("render stopped at max duration", "max_duration", opts.MaxDuration, "active_voices", eng.ActiveVoices())
	}

	if opts.NormalizePeak > 0 {
		out, err = signal.Normalize(out, opts.NormalizePeak)
		if err != nil {
			return Result{}, err
		}
	}

	res.Samples = out
	res.Peak = signal.Peak(out)
	res.RMS = signal.RMS(out)
	logger.Debug("render finished",
		"frames", len(out),
		"events", len(events),
		"peak_dbfs", core.LinearToDB(res.Peak),
		"truncated", res.Truncated,
	)
	return res, nil
}

package render

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-synth/internal/engine"
)

func note(on, off int64, key int) []engine.Event {
	return []engine.Event{
		{Frame: on, Kind: engine.EventNoteOn, Note: key, Velocity: 1},
		{Frame: off, Kind: engine.EventNoteOff, Note: key},
	}
}

func TestRenderValidation(t *testing.T) {
	if _, err := Render(nil, DefaultOptions()); !errors.Is(err, ErrNoEvents) {
		t.Fatalf("Render(nil) error = %v, want ErrNoEvents", err)
	}

	for _, mutate := range []func(*Options){
		func(o *Options) { o.MaxDuration = 0 },
		func(o *Options) { o.MinDuration = -time.Second },
		func(o *Options) { o.MinDuration = 2 * o.MaxDuration },
		func(o *Options) { o.MaxDuration = time.Nanosecond },
	} {
		opts := DefaultOptions()
		mutate(&opts)
		if _, err := Render(note(0, 10, 60), opts); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("error = %v, want ErrInvalidDuration", err)
		}
	}

	opts := DefaultOptions()
	opts.SampleRate = -1
	if _, err := Render(note(0, 10, 60), opts); err == nil {
		t.Fatal("expected engine error for negative sample rate")
	}
}

func TestRenderStopsAfterTail(t *testing.T) {
	opts := DefaultOptions()
	res, err := Render(note(0, 4800, 69), opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	release := opts.Params.ReleaseMs / 1000 * opts.SampleRate
	if got := float64(len(res.Samples)); got < 4800+release {
		t.Fatalf("rendered %v frames, want at least note plus release (%v)", got, 4800+release)
	}
	if res.Duration() > 2*time.Second {
		t.Fatalf("render ran %v, want the tail to stop it early", res.Duration())
	}
	if res.Truncated {
		t.Fatal("Truncated = true, want false")
	}
	if res.Peak <= 0.1 || res.RMS <= 0 {
		t.Fatalf("peak = %v rms = %v, want audible output", res.Peak, res.RMS)
	}
	if res.MaxMeter.PeakDB < -20 {
		t.Fatalf("max meter peak = %v dB, want audible", res.MaxMeter.PeakDB)
	}

	tail := res.Samples[len(res.Samples)-(opts.HoldBlocks-1)*opts.BlockSize:]
	for i, v := range tail {
		if v != 0 {
			t.Fatalf("tail sample %d = %v, want silence", i, v)
		}
	}
}

func TestRenderMinAndMaxDuration(t *testing.T) {
	opts := DefaultOptions()
	opts.MinDuration = 2 * time.Second
	res, err := Render(note(0, 480, 60), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(res.Samples); got < 96000 {
		t.Fatalf("rendered %d frames, want >= 96000", got)
	}

	opts = DefaultOptions()
	opts.MaxDuration = 50 * time.Millisecond
	res, err = Render(note(0, 1e6, 60), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Truncated || len(res.Samples) != 2400 {
		t.Fatalf("truncated = %v frames = %d, want true and 2400", res.Truncated, len(res.Samples))
	}
}

func TestRenderNormalize(t *testing.T) {
	opts := DefaultOptions()
	opts.NormalizePeak = 0.5
	events := append(note(0, 9600, 60), note(0, 9600, 64)...)

	res, err := Render(events, opts)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Peak-0.5) > 1e-12 {
		t.Fatalf("normalized peak = %v, want 0.5", res.Peak)
	}
}

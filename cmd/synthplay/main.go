// Command synthplay plays the polyphonic synth live.
//
// Notes come from a hardware MIDI input or, with -keyboard, from the
// computer keyboard in a tracker layout (z..m and q..u rows, space releases
// everything, -/+ shift octaves, shift+1..4 pick a waveform, Esc quits).
//
// Usage:
//
//	synthplay [flags]
//
// Examples:
//
//	synthplay -list
//	synthplay -port "USB MIDI Keyboard"
//	synthplay -port 1 -preset pad.json
//	synthplay -keyboard -waveform saw -note-length 400ms
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebitengine/oto/v3"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/internal/engine"
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
	sampleRate := flag.Int("rate", 48000, "output sample rate in Hz")
	voices := flag.Int("voices", 16, "polyphony")
	blockSize := flag.Int("block", 256, "engine block size in samples")
	bufferSize := flag.Duration("buffer", 20*time.Millisecond, "audio device buffer length")
	presetPath := flag.String("preset", "", "load synth parameters from a JSON preset")
	waveform := flag.String("waveform", "", "override waveform (sine, sawtooth, square, triangle)")
	list := flag.Bool("list", false, "list MIDI input ports and exit")
	port := flag.String("port", "", "MIDI input port name or number")
	keyboard := flag.Bool("keyboard", false, "play from the computer keyboard instead of MIDI")
	noteLength := flag.Duration("note-length", 300*time.Millisecond, "note length for keyboard input")
	velocity := flag.Float64("velocity", 0.8, "velocity for keyboard input (0..1)")
	status := flag.Duration("status", 2*time.Second, "status log interval (0 disables)")
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: synthplay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays the polyphonic synth from a MIDI input or the computer keyboard.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	initLogger(*debug)

	if err := run(config{
		sampleRate: *sampleRate,
		voices:     *voices,
		blockSize:  *blockSize,
		bufferSize: *bufferSize,
		presetPath: *presetPath,
		waveform:   *waveform,
		list:       *list,
		port:       *port,
		keyboard:   *keyboard,
		noteLength: *noteLength,
		velocity:   *velocity,
		status:     *status,
	}); err != nil {
		logger.Error("synthplay failed", "err", err)
		os.Exit(1)
	}
}

type config struct {
	sampleRate int
	voices     int
	blockSize  int
	bufferSize time.Duration
	presetPath string
	waveform   string
	list       bool
	port       string
	keyboard   bool
	noteLength time.Duration
	velocity   float64
	status     time.Duration
}

func loadParams(path, waveform string) (engine.Params, error) {
	p := engine.DefaultParams()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return engine.Params{}, err
		}
		p, err = engine.LoadParamsJSON(f)
		f.Close()
		if err != nil {
			return engine.Params{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if waveform != "" {
		w, err := osc.ParseWaveform(waveform)
		if err != nil {
			return engine.Params{}, err
		}
		p.Waveform = w
	}
	return p, nil
}

func run(cfg config) error {
	if !cfg.keyboard || cfg.list {
		drv, err := rtmididrv.New()
		if err != nil {
			return fmt.Errorf("open MIDI driver: %w", err)
		}
		defer drv.Close()
		if cfg.list {
			return listPorts(drv)
		}
		return runLive(cfg, func(ctx context.Context, eng *engine.Engine) error {
			if cfg.port == "" {
				return fmt.Errorf("no MIDI port given (use -list, -port or -keyboard)")
			}
			in, err := findPort(drv, cfg.port)
			if err != nil {
				return err
			}
			stop, err := listen(in, eng)
			if err != nil {
				return err
			}
			defer stop()
			<-ctx.Done()
			return nil
		})
	}

	return runLive(cfg, func(ctx context.Context, eng *engine.Engine) error {
		kb := &keyboardInput{
			eng:      eng,
			baseNote: 48,
			velocity: cfg.velocity,
			noteLen:  cfg.noteLength,
			params:   eng.Params(),
		}
		logger.Info("keyboard input ready", "base_note", kb.baseNote, "note_length", cfg.noteLength)
		return kb.run()
	})
}

// runLive builds the engine and audio output, then runs input until it
// returns or the process is interrupted.
func runLive(cfg config, input func(ctx context.Context, eng *engine.Engine) error) error {
	params, err := loadParams(cfg.presetPath, cfg.waveform)
	if err != nil {
		return err
	}

	eng, err := engine.New(float64(cfg.sampleRate),
		engine.WithMaxVoices(cfg.voices),
		engine.WithBlockSize(cfg.blockSize),
		engine.WithParams(params),
		engine.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.bufferSize,
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(newEnginePlayer(eng))
	defer player.Close()
	player.Play()
	logger.Info("audio started",
		"sample_rate", cfg.sampleRate,
		"voices", cfg.voices,
		"waveform", params.Waveform,
		"buffer", cfg.bufferSize,
	)

	if cfg.status > 0 {
		go reportStatus(ctx, eng, cfg.status)
	}

	err = input(ctx, eng)
	cancel()

	// Let the release tails ring out before closing the device.
	_ = eng.AllNotesOff()
	deadline := time.Now().Add(time.Duration(params.ReleaseMs*float64(time.Millisecond)) + cfg.bufferSize)
	for !eng.Idle() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	return err
}

func reportStatus(ctx context.Context, eng *engine.Engine, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			lv := eng.Levels()
			logger.Info("status",
				"voices", eng.ActiveVoices(),
				"peak_dbfs", fmt.Sprintf("%.1f", lv.PeakDB),
				"rms_dbfs", fmt.Sprintf("%.1f", lv.RMSDB),
			)
		}
	}
}

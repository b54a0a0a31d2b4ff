package engine

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultQueueCapacity = 1024
	defaultGainSmoothMs  = 50.0
)

type config struct {
	maxVoices     int
	blockSize     int
	queueCapacity int
	logger        *slog.Logger
	params        Params
}

func defaultConfig() config {
	pc := core.DefaultProcessorConfig()
	return config{
		maxVoices:     pc.MaxVoices,
		blockSize:     pc.BlockSize,
		queueCapacity: defaultQueueCapacity,
		logger:        slog.New(slog.DiscardHandler),
		params:        DefaultParams(),
	}
}

// Option configures an Engine.
type Option func(*config) error

// WithMaxVoices sets the polyphony ceiling.
func WithMaxVoices(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("engine max voices must be >= 1: %d", n)
		}
		cfg.maxVoices = n
		return nil
	}
}

// WithBlockSize sets the internal processing block size in samples.
// Parameter changes and metering happen at block granularity.
func WithBlockSize(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("engine block size must be >= 1: %d", n)
		}
		cfg.blockSize = n
		return nil
	}
}

// WithQueueCapacity sets how many pending events the engine accepts.
func WithQueueCapacity(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("engine queue capacity must be >= 1: %d", n)
		}
		cfg.queueCapacity = n
		return nil
	}
}

// WithLogger sets the logger used for diagnostics. A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		cfg.logger = l
		return nil
	}
}

// WithParams sets the initial parameters.
func WithParams(p Params) Option {
	return func(cfg *config) error {
		if err := p.Validate(); err != nil {
			return err
		}
		cfg.params = p
		return nil
	}
}

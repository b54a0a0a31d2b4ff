package engine

import (
	"container/heap"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/synth"
)

// ErrQueueFull is returned by Schedule when the event queue is at capacity.
var ErrQueueFull = errors.New("engine event queue is full")

// Engine renders the polyphonic synth for a host.
type Engine struct {
	mu sync.Mutex

	sampleRate float64
	blockSize  int
	logger     *slog.Logger

	voices *synth.VoiceManager

	params      Params
	paramsDirty bool
	gain        smoother
	meter       meter

	queue    eventQueue
	queueCap int
	seq      uint64
	frame    int64

	mix []float64
	out []float64
}

// New creates an engine. Sample rate must be positive and finite.
func New(sampleRate float64, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("engine sample rate must be positive and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	vm, err := synth.NewVoiceManager(sampleRate, cfg.maxVoices)
	if err != nil {
		return nil, fmt.Errorf("engine voices: %w", err)
	}

	e := &Engine{
		sampleRate: sampleRate,
		blockSize:  cfg.blockSize,
		logger:     cfg.logger,
		voices:     vm,
		params:     cfg.params,
		gain:       newSmoother(sampleRate, defaultGainSmoothMs, core.DBToLinear(cfg.params.GainDB)),
		meter:      newMeter(cfg.blockSize),
		queue:      make(eventQueue, 0, cfg.queueCapacity),
		queueCap:   cfg.queueCapacity,
		mix:        make([]float64, cfg.blockSize),
		out:        make([]float64, cfg.blockSize),
	}
	e.pushParams()
	e.logger.Debug("engine created",
		"sample_rate", sampleRate,
		"max_voices", cfg.maxVoices,
		"block_size", cfg.blockSize,
		"queue_capacity", cfg.queueCapacity,
	)
	return e, nil
}

// SampleRate returns the sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// BlockSize returns the internal block size in samples.
func (e *Engine) BlockSize() int { return e.blockSize }

// MaxVoices returns the polyphony ceiling.
func (e *Engine) MaxVoices() int { return e.voices.MaxVoices() }

// Schedule queues ev. Events at frames that have already been rendered are
// dispatched at the start of the next block.
func (e *Engine) Schedule(ev Event) error {
	switch ev.Kind {
	case EventNoteOn, EventNoteOff, EventAllNotesOff:
	default:
		return fmt.Errorf("engine event kind is invalid: %v", ev.Kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduleLocked(ev)
}

func (e *Engine) scheduleLocked(ev Event) error {
	if len(e.queue) >= e.queueCap {
		e.logger.Warn("dropping event, queue full", "kind", ev.Kind, "note", ev.Note, "frame", ev.Frame)
		return ErrQueueFull
	}
	if ev.Frame < e.frame {
		ev.Frame = e.frame
	}
	heap.Push(&e.queue, queuedEvent{Event: ev, seq: e.seq})
	e.seq++
	return nil
}

// NoteOn starts note at the next rendered sample.
func (e *Engine) NoteOn(note int, velocity float64) error {
	return e.Schedule(Event{Kind: EventNoteOn, Note: note, Velocity: velocity})
}

// NoteOff releases note at the next rendered sample.
func (e *Engine) NoteOff(note int) error {
	return e.Schedule(Event{Kind: EventNoteOff, Note: note})
}

// AllNotesOff releases every held voice at the next rendered sample.
func (e *Engine) AllNotesOff() error {
	return e.Schedule(Event{Kind: EventAllNotesOff})
}

// SetParams stores p, clamped into range, for the next block.
func (e *Engine) SetParams(p Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = p.Clamped()
	e.paramsDirty = true
}

// Params returns the current parameters.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// ActiveVoices returns the number of sounding voices.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voices.ActiveVoiceCount()
}

// Pending returns the number of queued events.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Idle reports whether no voice is sounding and no event is pending.
func (e *Engine) Idle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue) == 0 && e.voices.ActiveVoiceCount() == 0
}

// Frame returns the number of frames rendered since creation or Reset.
func (e *Engine) Frame() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Levels returns the output meter reading.
func (e *Engine) Levels() Levels {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meter.levels()
}

// Reset silences all voices, drops pending events and rewinds the frame
// counter. Parameters are kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices.Reset()
	e.queue = e.queue[:0]
	e.seq = 0
	e.frame = 0
	e.meter.reset()
	e.gain.snap(core.DBToLinear(e.params.GainDB))
}

// Render fills dst with mono samples clamped to [-1, 1].
func (e *Engine) Render(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(dst) > 0 {
		n := min(len(dst), e.blockSize)
		out := e.out[:n]
		e.processBlock(out)
		core.ToFloat32(dst[:n], out)
		dst = dst[n:]
	}
}

// Process fills dst with unclipped mono samples.
func (e *Engine) Process(dst []float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(dst) > 0 {
		n := min(len(dst), e.blockSize)
		e.processBlock(dst[:n])
		dst = dst[n:]
	}
}

// processBlock renders len(out) <= blockSize frames. The voice manager is
// run in segments between event frames so every event lands on its exact
// sample.
func (e *Engine) processBlock(out []float64) {
	if e.paramsDirty {
		e.pushParams()
		e.paramsDirty = false
	}

	mix := e.mix[:len(out)]
	start := e.frame
	end := start + int64(len(out))

	pos := 0
	for pos < len(out) {
		now := start + int64(pos)
		for len(e.queue) > 0 && e.queue[0].Frame <= now {
			qe := heap.Pop(&e.queue).(queuedEvent)
			e.dispatch(qe.Event)
		}

		next := len(out)
		if len(e.queue) > 0 && e.queue[0].Frame < end {
			next = int(e.queue[0].Frame - start)
		}
		e.voices.Process(mix[pos:next])
		pos = next
	}
	e.frame = end

	e.gain.apply(out, mix)
	e.meter.update(out)
}

func (e *Engine) dispatch(ev Event) {
	switch ev.Kind {
	case EventNoteOn:
		e.voices.NoteOn(ev.Note, ev.Velocity)
	case EventNoteOff:
		e.voices.NoteOff(ev.Note)
	case EventAllNotesOff:
		e.voices.AllNotesOff()
	}
}

func (e *Engine) pushParams() {
	p := e.params
	e.voices.SetWaveform(p.Waveform)
	e.voices.SetAttack(p.AttackMs)
	e.voices.SetDecay(p.DecayMs)
	e.voices.SetSustain(p.Sustain)
	e.voices.SetRelease(p.ReleaseMs)
	e.gain.setTarget(core.DBToLinear(p.GainDB))
}

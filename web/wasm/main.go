//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/internal/engine"
)

var (
	synth *engine.Engine
	funcs []js.Func
	buf   []float32
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		var opts []engine.Option
		if len(args) > 1 {
			opts = append(opts, engine.WithMaxVoices(args[1].Int()))
		}
		e, err := engine.New(sr, opts...)
		if err != nil {
			return err.Error()
		}
		synth = e
		return js.Null()
	}))

	api.Set("noteOn", export(func(args []js.Value) any {
		if synth == nil || len(args) < 2 {
			return js.Null()
		}
		if err := synth.NoteOn(args[0].Int(), args[1].Float()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("noteOff", export(func(args []js.Value) any {
		if synth == nil || len(args) < 1 {
			return js.Null()
		}
		if err := synth.NoteOff(args[0].Int()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("allNotesOff", export(func(args []js.Value) any {
		if synth == nil {
			return js.Null()
		}
		if err := synth.AllNotesOff(); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("setParams", export(func(args []js.Value) any {
		if synth == nil || len(args) < 1 {
			return js.Null()
		}
		p := args[0]
		cur := synth.Params()
		if v := p.Get("waveform"); v.Type() == js.TypeString {
			w, err := osc.ParseWaveform(v.String())
			if err != nil {
				return err.Error()
			}
			cur.Waveform = w
		}
		setFloat(p, "gainDb", &cur.GainDB)
		setFloat(p, "attackMs", &cur.AttackMs)
		setFloat(p, "decayMs", &cur.DecayMs)
		setFloat(p, "sustain", &cur.Sustain)
		setFloat(p, "releaseMs", &cur.ReleaseMs)
		synth.SetParams(cur)
		return js.Null()
	}))

	api.Set("render", export(func(args []js.Value) any {
		if synth == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		if cap(buf) < n {
			buf = make([]float32, n)
		}
		out := buf[:n]
		synth.Render(out)
		arr := js.Global().Get("Float32Array").New(n)
		for i := 0; i < n; i++ {
			arr.SetIndex(i, out[i])
		}
		return arr
	}))

	api.Set("activeVoices", export(func(args []js.Value) any {
		if synth == nil {
			return 0
		}
		return synth.ActiveVoices()
	}))

	api.Set("levels", export(func(args []js.Value) any {
		if synth == nil {
			return js.Null()
		}
		lv := synth.Levels()
		obj := js.Global().Get("Object").New()
		obj.Set("peakDb", lv.PeakDB)
		obj.Set("rmsDb", lv.RMSDB)
		return obj
	}))

	js.Global().Set("AlgoSynth", api)
	select {}
}

func setFloat(obj js.Value, key string, dst *float64) {
	if v := obj.Get(key); v.Type() == js.TypeNumber {
		*dst = v.Float()
	}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}

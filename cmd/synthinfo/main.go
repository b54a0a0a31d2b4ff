// Command synthinfo prints pitch and level measurements of the oscillator
// waveforms.
//
// Usage:
//
//	synthinfo [flags] [waveform ...]
//
// Without arguments it measures every waveform.
//
// Examples:
//
//	synthinfo
//	synthinfo -notes 21,60,108 sine saw
//	synthinfo -rate 48000 -samples 65536 square
//	synthinfo -table
//	synthinfo -list
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/signal"
	"github.com/cwbudde/algo-synth/dsp/spectrum"
	"github.com/cwbudde/algo-synth/dsp/synth"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(note int) string {
	octave := note/12 - 1
	pc := note % 12
	if pc < 0 {
		pc += 12
		octave--
	}
	return fmt.Sprintf("%s%d", noteNames[pc], octave)
}

func main() {
	rate := flag.Float64("rate", 44100, "sample rate in Hz")
	samples := flag.Int("samples", 44100, "samples rendered per measurement")
	notes := flag.String("notes", "45,57,69,81", "comma-separated MIDI notes to measure")
	table := flag.Bool("table", false, "print the MIDI note to frequency table and exit")
	list := flag.Bool("list", false, "list available waveform names")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: synthinfo [flags] [waveform ...]\n\n")
		fmt.Fprintf(os.Stderr, "Renders each waveform at the given notes and measures pitch and level.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, measures all waveforms.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  synthinfo -notes 21,60,108 sine saw\n")
		fmt.Fprintf(os.Stderr, "  synthinfo -rate 48000 square\n")
		fmt.Fprintf(os.Stderr, "  synthinfo -table\n")
	}
	flag.Parse()

	if *list {
		for _, w := range osc.Waveforms() {
			fmt.Println(w)
		}
		return
	}
	if *table {
		printTable()
		return
	}

	waves, err := resolveWaveforms(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v (use -list to see available)\n", err)
		os.Exit(1)
	}
	noteList, err := parseNotes(*notes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printAnalysis(waves, noteList, *rate, *samples); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func resolveWaveforms(names []string) ([]osc.Waveform, error) {
	if len(names) == 0 {
		return osc.Waveforms(), nil
	}
	waves := make([]osc.Waveform, 0, len(names))
	for _, name := range names {
		w, err := osc.ParseWaveform(name)
		if err != nil {
			return nil, err
		}
		waves = append(waves, w)
	}
	return waves, nil
}

func parseNotes(s string) ([]int, error) {
	var notes []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid note %q: %w", field, err)
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return notes, nil
}

func printTable() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Note\tName\tFrequency [Hz]\n")
	_, _ = fmt.Fprintf(tw, "----\t----\t--------------\n")
	for n := 0; n < 128; n++ {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%.4f\n", n, noteName(n), synth.NoteToFrequency(n))
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

type measurement struct {
	expected float64
	fft      float64
	zc       float64
	rms      float64
	peak     float64
}

func measure(w osc.Waveform, note int, rate float64, n int) (measurement, error) {
	o, err := osc.New(rate)
	if err != nil {
		return measurement{}, err
	}
	f := synth.NoteToFrequency(note)
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = o.Process(w, f)
	}

	peakHz, err := spectrum.PeakFrequency(buf, rate)
	if err != nil {
		return measurement{}, fmt.Errorf("%s note %d: %w", w, note, err)
	}
	return measurement{
		expected: f,
		fft:      peakHz,
		zc:       signal.EstimateFrequency(buf, rate),
		rms:      signal.RMS(buf),
		peak:     signal.Peak(buf),
	}, nil
}

func printAnalysis(waves []osc.Waveform, notes []int, rate float64, n int) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Waveform\tNote\tName\tExpected [Hz]\tFFT Peak [Hz]\tZero-Cross [Hz]\tRMS [dBFS]\tPeak\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "--------\t----\t----\t-------------\t-------------\t---------------\t----------\t----\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, w := range waves {
		for _, note := range notes {
			m, err := measure(w, note, rate, n)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\t%.3f\t%.3f\t%.3f\t%.2f\t%.4f\n",
				w, note, noteName(note), m.expected, m.fft, m.zc, core.LinearToDB(m.rms), m.peak,
			); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	return tw.Flush()
}

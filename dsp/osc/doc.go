// Package osc provides a phase-accumulating oscillator for the four classic
// synthesizer waveforms: sine, sawtooth, square and triangle.
//
// The phase is a double-precision accumulator normalized to [0, 1). Each call
// returns the waveform value at the current phase and then advances it by
// frequency/sampleRate, so a freshly reset oscillator always starts a cycle
// at phase zero.
//
// The waveforms are generated naively, without band-limiting. Sawtooth and
// square alias audibly above roughly sampleRate/4; there is no PolyBLEP or
// oversampling stage.
package osc

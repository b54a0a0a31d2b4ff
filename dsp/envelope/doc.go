// Package envelope implements a linear ADSR amplitude envelope.
//
// The envelope is a five-state machine (Idle, Attack, Decay, Sustain,
// Release) evaluated once per sample. Stages with zero length resolve inside
// the same Process call, so with instantaneous attack and decay the very
// first sample after NoteOn is already at the sustain level. Release starts
// from whatever value the envelope holds at NoteOff, which keeps the output
// continuous when a note is released mid-attack or mid-decay.
package envelope

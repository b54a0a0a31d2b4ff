// Package synth provides the polyphonic voice layer of the synthesizer.
//
// A Voice binds one MIDI note to an oscillator and an ADSR envelope. Its
// output is the oscillator sample scaled by the envelope value, and it flips
// itself to Idle on the first Process call after its envelope finishes.
//
// VoiceManager owns a fixed arena of voices allocated at construction.
// NoteOn picks a slot in priority order: retrigger a voice already holding
// the note, take the first idle slot, or steal. Stealing prefers the oldest
// releasing voice and only falls back to the oldest active voice when no
// voice is releasing. Ages come from a single manager-wide counter bumped on
// every NoteOn.
//
// VoiceManager.Process mixes sample-major: every sounding voice advances by
// one sample before the next output index is computed. The mix is additive
// and unclipped; gain staging belongs to the caller.
//
// Nothing in this package allocates after construction and nothing is safe
// for concurrent use.
package synth

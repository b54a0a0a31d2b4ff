// Package render turns MIDI files into audio offline.
//
// LoadSMF reads a Standard MIDI File into sample-timed engine events,
// Render plays them through an engine until the tail has decayed, and
// WriteWAV stores the result as mono PCM.
package render

// Package spectrum provides the small amount of spectral analysis the synth
// needs to verify itself: power spectra and FFT-based peak frequency
// estimation with sub-bin interpolation.
//
// It is used by tests and by cmd/synthinfo to confirm that oscillators and
// voices sound at the pitch the note table promises.
package spectrum

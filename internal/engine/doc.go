// Package engine hosts the voice manager for real-time and offline use.
//
// It plays the part of a plugin host: note events are queued at absolute
// sample frames and dispatched sample-accurately by splitting each block at
// event boundaries, parameters are pushed to every voice once per block,
// master gain is smoothed, output is metered and narrowed to float32.
//
// An Engine may be driven by one audio goroutine while another goroutine
// feeds events and parameters; all methods serialize on an internal mutex.
package engine

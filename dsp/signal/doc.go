// Package signal provides level and crossing metrics for rendered audio
// buffers, plus peak normalization for offline renders.
package signal

package engine

import (
	"github.com/cwbudde/algo-vecmath"
	"github.com/meko-christian/algo-approx"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// MinLevelDB is reported for silence.
const MinLevelDB = -120.0

const (
	ln10 = 2.302585092994045684017991454684

	// Per-block decay of the peak hold and weight of the RMS average.
	peakFall  = 0.9
	rmsWeight = 0.3
)

// Levels is a snapshot of output metering in dBFS.
type Levels struct {
	PeakDB float64
	RMSDB  float64
}

// meter tracks block peak and mean square with simple ballistics. Values
// are for display, so the dB conversion uses fast approximations.
type meter struct {
	peak       float64
	meanSquare float64
	sq         []float64
}

func newMeter(blockSize int) meter {
	return meter{sq: make([]float64, blockSize)}
}

func (m *meter) update(block []float64) {
	if len(block) == 0 {
		return
	}
	m.sq = core.EnsureLen(m.sq, len(block))
	sq := m.sq
	vecmath.MulBlock(sq, block, block)

	blockPeakSq := 0.0
	sum := 0.0
	for _, v := range sq {
		sum += v
		if v > blockPeakSq {
			blockPeakSq = v
		}
	}

	blockPeak := fastSqrt(blockPeakSq)
	m.peak *= peakFall
	if blockPeak > m.peak {
		m.peak = blockPeak
	}
	ms := sum / float64(len(block))
	m.meanSquare += (ms - m.meanSquare) * rmsWeight
}

func (m *meter) levels() Levels {
	return Levels{
		PeakDB: amplitudeToDB(m.peak),
		RMSDB:  amplitudeToDB(fastSqrt(m.meanSquare)),
	}
}

func (m *meter) reset() {
	m.peak = 0
	m.meanSquare = 0
}

func fastSqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return approx.FastSqrt(x)
}

func amplitudeToDB(a float64) float64 {
	if a <= 0 {
		return MinLevelDB
	}
	db := 20 * approx.FastLog(a) / ln10
	if db < MinLevelDB {
		return MinLevelDB
	}
	return db
}

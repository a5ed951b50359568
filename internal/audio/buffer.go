package audio

import (
	"math"
	"time"
)

// Buffer is a mono PCM buffer. Samples are nominally in [-1, 1] but nothing
// enforces that until a mix is normalized or encoded.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// NewBuffer wraps samples recorded at sampleRate.
func NewBuffer(samples []float64, sampleRate int) *Buffer {
	return &Buffer{Samples: samples, SampleRate: sampleRate}
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	return len(b.Samples)
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Trim drops the first startSec seconds and, when durationSec is positive,
// keeps at most durationSec seconds of what remains. Trimming past the end
// yields an empty buffer.
func (b *Buffer) Trim(startSec, durationSec float64) {
	if startSec > 0 {
		skip := sampleCount(startSec * float64(b.SampleRate))
		if skip >= len(b.Samples) {
			b.Samples = b.Samples[:0]
		} else {
			b.Samples = b.Samples[skip:]
		}
	}

	if durationSec > 0 {
		keep := sampleCount(durationSec * float64(b.SampleRate))
		if keep < len(b.Samples) {
			b.Samples = b.Samples[:keep]
		}
	}
}

// sampleCount converts a fractional sample position to an int, saturating
// at math.MaxInt. NaN and non-positive values give 0.
func sampleCount(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= float64(math.MaxInt):
		return math.MaxInt
	}
	return int(v)
}

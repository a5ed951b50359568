package audio

import "math"

// MinCrossfadeSec is the shortest crossfade the mixer will apply.
const MinCrossfadeSec = 0.5

// OverlapSamples converts a crossfade length into a sample count, flooring
// the crossfade at MinCrossfadeSec. Lengths too large to represent saturate,
// which makes Crossfade concatenate.
func OverlapSamples(crossfadeSec float64, sampleRate int) int {
	if math.IsNaN(crossfadeSec) {
		crossfadeSec = MinCrossfadeSec
	}
	return sampleCount(math.Round(math.Max(MinCrossfadeSec, crossfadeSec) * float64(sampleRate)))
}

// FadeCurves returns complementary linear gain curves of length n: fadeOut
// runs from 1 to 0 and fadeIn from 0 to 1.
func FadeCurves(n int) (fadeOut, fadeIn []float64) {
	if n <= 0 {
		return nil, nil
	}

	fadeOut = make([]float64, n)
	fadeIn = make([]float64, n)
	if n == 1 {
		fadeOut[0] = 1
		return fadeOut, fadeIn
	}

	last := float64(n - 1)
	for i := 0; i < n; i++ {
		fadeIn[i] = float64(i) / last
		fadeOut[i] = 1 - fadeIn[i]
	}
	return fadeOut, fadeIn
}

// Crossfade blends the tail of a into the head of b over crossfadeSec
// seconds. When either buffer is not longer than the overlap the two are
// simply concatenated. The result is peak-normalized.
//
// Both buffers are expected to share a sample rate; the result uses a's.
func Crossfade(a, b *Buffer, crossfadeSec float64) *Buffer {
	rate := a.SampleRate
	if rate <= 0 {
		rate = b.SampleRate
	}

	overlap := OverlapSamples(crossfadeSec, rate)
	la, lb := len(a.Samples), len(b.Samples)

	var mixed []float64
	if la <= overlap || lb <= overlap {
		mixed = make([]float64, 0, la+lb)
		mixed = append(mixed, a.Samples...)
		mixed = append(mixed, b.Samples...)
	} else {
		head := la - overlap
		mixed = make([]float64, la+lb-overlap)
		copy(mixed, a.Samples[:head])

		fadeOut, fadeIn := FadeCurves(overlap)
		aTail := a.Samples[head:]
		for i := 0; i < overlap; i++ {
			mixed[head+i] = aTail[i]*fadeOut[i] + b.Samples[i]*fadeIn[i]
		}

		copy(mixed[la:], b.Samples[overlap:])
	}

	out := &Buffer{Samples: mixed, SampleRate: rate}
	Normalize(out)
	return out
}

// Peak returns the largest absolute sample value, or 1.0 for an empty buffer.
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 1.0
	}

	var peak float64
	for _, s := range samples {
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	return peak
}

// Normalize scales the buffer down so its peak is 1.0. Buffers already
// within range are left untouched.
func Normalize(buf *Buffer) {
	peak := Peak(buf.Samples)
	if peak <= 1.0 {
		return
	}
	for i := range buf.Samples {
		buf.Samples[i] /= peak
	}
}

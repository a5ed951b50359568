package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// WAV output parameters.
const (
	WAVChannels  = 1
	WAVPrecision = 2 // bytes per sample, 16-bit PCM
)

// EncodeWAV writes buf to w as a mono 16-bit PCM WAV file. Samples outside
// [-1, 1] are clamped.
func EncodeWAV(w io.Writer, buf *Buffer) error {
	if buf.SampleRate <= 0 {
		return fmt.Errorf("encode wav: invalid sample rate %d", buf.SampleRate)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(buf.SampleRate),
		NumChannels: WAVChannels,
		Precision:   WAVPrecision,
	}

	// The encoder rewrites the header once the data size is known, so it
	// needs a seekable destination.
	out := &seekBuffer{}
	if err := wav.Encode(out, &sampleStreamer{samples: buf.Samples}, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}

	if _, err := w.Write(out.data); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// WAVBytes encodes buf and returns the complete file.
func WAVBytes(buf *Buffer) ([]byte, error) {
	var out bytes.Buffer
	if err := EncodeWAV(&out, buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// sampleStreamer feeds a mono buffer to beep as identical left/right frames.
type sampleStreamer struct {
	samples []float64
	pos     int
}

func (s *sampleStreamer) Stream(frames [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}

	n := min(len(frames), len(s.samples)-s.pos)
	for i := 0; i < n; i++ {
		v := clamp(s.samples[s.pos+i])
		frames[i] = [2]float64{v, v}
	}
	s.pos += n
	return n, true
}

func (s *sampleStreamer) Err() error {
	return nil
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	case v != v: // NaN
		return 0
	}
	return v
}

// seekBuffer is an in-memory io.WriteSeeker.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(b.pos)
	case io.SeekEnd:
		base = int64(len(b.data))
	default:
		return 0, errors.New("seek: invalid whence")
	}

	next := base + offset
	if next < 0 {
		return 0, errors.New("seek: negative position")
	}
	b.pos = int(next)
	return next, nil
}

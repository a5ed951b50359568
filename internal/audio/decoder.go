package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// resampleQuality is the beep interpolation quality used for rate conversion.
const resampleQuality = 4

// Decoder turns an audio file into a mono buffer at a target sample rate.
type Decoder interface {
	Decode(ctx context.Context, path string, sampleRate int) (*Buffer, error)
}

// NativeDecoder decodes WAV, MP3, FLAC and Ogg Vorbis in-process.
type NativeDecoder struct{}

func NewNativeDecoder() *NativeDecoder {
	return &NativeDecoder{}
}

// Supports reports whether the native decoder handles the format.
func (d *NativeDecoder) Supports(format Format) bool {
	switch format {
	case FormatWAV, FormatMP3, FormatFLAC, FormatOgg:
		return true
	}
	return false
}

func (d *NativeDecoder) Decode(ctx context.Context, path string, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid target sample rate %d", sampleRate)
	}

	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	if !d.Supports(format) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	stream, streamFormat, err := openStream(format, file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s stream: %w", format, err)
	}
	defer stream.Close()

	var source beep.Streamer = stream
	target := beep.SampleRate(sampleRate)
	if streamFormat.SampleRate != target {
		source = beep.Resample(resampleQuality, streamFormat.SampleRate, target, stream)
	}

	samples, err := drainMono(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s stream: %w", format, err)
	}

	slog.Debug("Decoded audio",
		"path", path,
		"format", format,
		"sourceRate", int(streamFormat.SampleRate),
		"targetRate", sampleRate,
		"samples", len(samples),
	)

	return NewBuffer(samples, sampleRate), nil
}

func openStream(format Format, file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch format {
	case FormatWAV:
		return wav.Decode(file)
	case FormatMP3:
		return mp3.Decode(io.NopCloser(file))
	case FormatFLAC:
		return flac.Decode(file)
	case FormatOgg:
		return vorbis.Decode(io.NopCloser(file))
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// drainMono reads a streamer to the end, averaging left and right channels.
func drainMono(ctx context.Context, s beep.Streamer) ([]float64, error) {
	chunk := make([][2]float64, 8192)
	var samples []float64

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			samples = append(samples, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}

	if err := s.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// ChainDecoder tries the native decoder first and falls back to ffmpeg for
// formats it does not handle or streams it fails to read.
type ChainDecoder struct {
	native   *NativeDecoder
	fallback *FFmpegDecoder
}

func NewChainDecoder() *ChainDecoder {
	return &ChainDecoder{
		native:   NewNativeDecoder(),
		fallback: NewFFmpegDecoder(),
	}
}

func (d *ChainDecoder) Decode(ctx context.Context, path string, sampleRate int) (*Buffer, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	var nativeErr error
	if d.native.Supports(format) {
		buf, err := d.native.Decode(ctx, path, sampleRate)
		if err == nil {
			return buf, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		nativeErr = err
		slog.Debug("Native decode failed, trying ffmpeg", "path", path, "format", format, "error", err)
	}

	if !d.fallback.Available() {
		if nativeErr != nil {
			return nil, nativeErr
		}
		return nil, fmt.Errorf("%w: %s (ffmpeg not installed)", ErrUnsupportedFormat, format)
	}

	buf, err := d.fallback.Decode(ctx, path, sampleRate)
	if err != nil {
		return nil, errors.Join(nativeErr, err)
	}
	return buf, nil
}

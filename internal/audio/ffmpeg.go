// Package audio provides the buffer type, decoders, crossfade mixer and WAV
// encoder used to render offline transitions. Decoding happens in-process for
// common formats and falls back to FFmpeg for everything else.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
)

const ffmpegBinary = "ffmpeg"

// ffmpegError wraps FFmpeg command errors with additional context
type ffmpegError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ffmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ffmpegError) Unwrap() error {
	return e.wrapped
}

// newFFmpegError creates a new ffmpegError with truncated command output
func newFFmpegError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	out := string(output)
	if len(out) > 1000 {
		out = out[:1000] + "..."
	}
	return &ffmpegError{
		cmd:     cmdStr,
		output:  out,
		wrapped: err,
	}
}

// FFmpegDecoder decodes anything FFmpeg understands by piping raw float64
// PCM out of the ffmpeg binary.
type FFmpegDecoder struct {
	binary string
}

func NewFFmpegDecoder() *FFmpegDecoder {
	return &FFmpegDecoder{binary: ffmpegBinary}
}

// Available reports whether the ffmpeg binary can be found on PATH.
func (f *FFmpegDecoder) Available() bool {
	_, err := exec.LookPath(f.binary)
	return err == nil
}

func (f *FFmpegDecoder) Decode(ctx context.Context, path string, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid target sample rate %d", sampleRate)
	}
	if err := validateFile(path); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	slog.Debug("Decoding with ffmpeg", "input", path, "sampleRate", sampleRate)

	cmd := exec.CommandContext(ctx, f.binary,
		"-v", "error",
		"-i", path,
		"-f", "f64le",
		"-acodec", "pcm_f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newFFmpegError(cmd, stderr.Bytes(), err)
	}

	return NewBuffer(decodeFloat64LE(stdout.Bytes()), sampleRate), nil
}

// decodeFloat64LE converts raw little-endian float64 PCM into samples,
// dropping any trailing partial sample.
func decodeFloat64LE(raw []byte) []float64 {
	samples := make([]float64, len(raw)/8)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8 : i*8+8]))
	}
	return samples
}

// Package source loads a remote audio source into a mono buffer: it stages
// the download in a private directory, decodes and resamples it, trims it to
// the requested window and removes the staging directory on every path.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jaki95/dj-transition/internal/audio"
	"github.com/jaki95/dj-transition/internal/domain"
	"github.com/jaki95/dj-transition/internal/downloader"
)

const stagingDirName = "dj-transition"

// Loader fetches and decodes audio sources.
type Loader struct {
	registry *downloader.Registry
	decoder  audio.Decoder
	tempDir  string
	timeout  time.Duration
}

// NewLoader creates a loader that stages downloads under tempDir and bounds
// each fetch by timeout.
func NewLoader(registry *downloader.Registry, decoder audio.Decoder, tempDir string, timeout time.Duration) *Loader {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if timeout <= 0 {
		timeout = downloader.DefaultTimeout
	}
	return &Loader{
		registry: registry,
		decoder:  decoder,
		tempDir:  tempDir,
		timeout:  timeout,
	}
}

// Load fetches spec.URL, decodes it to mono at sampleRate and applies the
// start/duration trim. Failures are *domain.FetchError or *domain.DecodeError.
func (l *Loader) Load(ctx context.Context, spec domain.SourceSpec, sampleRate int) (*audio.Buffer, error) {
	dl, err := l.registry.For(spec.URL)
	if err != nil {
		return nil, err
	}

	stagingDir := filepath.Join(l.tempDir, stagingDirName, uuid.NewString())
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(stagingDir); err != nil {
			slog.Error("Failed to remove staging directory", "dir", stagingDir, "error", err)
		}
	}()

	path, err := l.fetch(ctx, dl, spec.URL, stagingDir)
	if err != nil {
		return nil, err
	}

	buf, err := l.decoder.Decode(ctx, path, sampleRate)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.DecodeError{URL: spec.URL, Err: err}
	}

	var duration float64
	if spec.HasDuration() {
		duration = *spec.DurationSec
	}
	buf.Trim(spec.StartSec, duration)

	slog.Debug("Loaded source",
		"url", spec.URL,
		"startSec", spec.StartSec,
		"durationSec", duration,
		"samples", buf.Len(),
	)
	return buf, nil
}

func (l *Loader) fetch(ctx context.Context, dl downloader.Downloader, url, stagingDir string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	path, err := dl.Download(fetchCtx, url, stagingDir)
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			return "", err
		}
		return "", &domain.FetchError{URL: url, Err: err}
	}
	return path, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jaki95/dj-transition/config"
	"github.com/jaki95/dj-transition/internal/audio"
	"github.com/jaki95/dj-transition/internal/domain"
	"github.com/jaki95/dj-transition/internal/progress"
)

// Progress percentages reported while rendering
const (
	ProgressFetchStart  = 0
	ProgressMixStart    = 60
	ProgressEncodeStart = 80
	ProgressComplete    = 100
)

// SourceLoader loads one side of a transition.
type SourceLoader interface {
	Load(ctx context.Context, spec domain.SourceSpec, sampleRate int) (*audio.Buffer, error)
}

// Mixer renders offline crossfades between two remote sources.
//
// Every render is independent: buffers are request-local and the mixer holds
// no mutable state, so one Mixer serves concurrent requests.
type Mixer struct {
	loader           SourceLoader
	sampleRate       int
	defaultCrossfade float64
}

// NewMixer builds a Mixer using the sample rate and default crossfade from cfg.
func NewMixer(loader SourceLoader, cfg config.MixConfig) *Mixer {
	return &Mixer{
		loader:           loader,
		sampleRate:       cfg.SampleRate,
		defaultCrossfade: cfg.DefaultCrossfadeSec,
	}
}

// Mix loads both sources concurrently and crossfades them. If either source
// fails the whole mix fails; no partial result is returned.
func (m *Mixer) Mix(ctx context.Context, req domain.MixRequest, tracker *progress.Tracker) (*audio.Buffer, error) {
	if err := req.Validate(); err != nil {
		tracker.SetError(err)
		return nil, err
	}

	tracker.Update(progress.StageFetching, ProgressFetchStart, "Fetching sources")

	var from, to *audio.Buffer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf, err := m.load(gctx, "from", req.From, tracker)
		from = buf
		return err
	})
	g.Go(func() error {
		buf, err := m.load(gctx, "to", req.To, tracker)
		to = buf
		return err
	})
	if err := g.Wait(); err != nil {
		tracker.SetError(err)
		return nil, err
	}

	crossfade := req.Crossfade(m.defaultCrossfade)
	tracker.Update(progress.StageMixing, ProgressMixStart, fmt.Sprintf("Crossfading over %.2fs", crossfade))

	return audio.Crossfade(from, to, crossfade), nil
}

// Render mixes the request and encodes the result as a WAV file.
func (m *Mixer) Render(ctx context.Context, req domain.MixRequest, tracker *progress.Tracker) ([]byte, error) {
	started := time.Now()

	mixed, err := m.Mix(ctx, req, tracker)
	if err != nil {
		return nil, err
	}

	tracker.Update(progress.StageEncoding, ProgressEncodeStart, "Encoding WAV")
	data, err := audio.WAVBytes(mixed)
	if err != nil {
		tracker.SetError(err)
		return nil, err
	}

	tracker.Update(progress.StageComplete, ProgressComplete, "Mix ready")
	slog.Info("Rendered mix",
		"from", req.From.URL,
		"to", req.To.URL,
		"samples", mixed.Len(),
		"seconds", mixed.Duration().Seconds(),
		"bytes", len(data),
		"elapsed", time.Since(started),
	)
	return data, nil
}

func (m *Mixer) load(ctx context.Context, role string, spec domain.SourceSpec, tracker *progress.Tracker) (*audio.Buffer, error) {
	buf, err := m.loader.Load(ctx, spec, m.sampleRate)
	if err != nil {
		slog.Error("Failed to load source", "role", role, "url", spec.URL, "error", err)
		return nil, err
	}

	tracker.SourceLoaded(progress.SourceDetails{
		Role:     role,
		URL:      spec.URL,
		Samples:  buf.Len(),
		Duration: buf.Duration().Seconds(),
	})
	return buf, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jaki95/dj-transition/config"
	"github.com/jaki95/dj-transition/internal/audio"
	"github.com/jaki95/dj-transition/internal/domain"
	"github.com/jaki95/dj-transition/internal/downloader"
	"github.com/jaki95/dj-transition/internal/progress"
	"github.com/jaki95/dj-transition/internal/service"
	"github.com/jaki95/dj-transition/internal/source"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")
	fromURL := flag.String("from", "", "URL or path of the outgoing track (required)")
	toURL := flag.String("to", "", "URL or path of the incoming track (required)")
	fromStart := flag.Float64("from-start", 0, "Offset into the outgoing track, in seconds")
	fromDuration := flag.Float64("from-duration", 0, "Length of the outgoing excerpt, in seconds (0 keeps the rest)")
	toStart := flag.Float64("to-start", 0, "Offset into the incoming track, in seconds")
	toDuration := flag.Float64("to-duration", 0, "Length of the incoming excerpt, in seconds (0 keeps the rest)")
	crossfade := flag.Float64("crossfade", 0, "Crossfade length in seconds (0 uses the configured default)")
	out := flag.String("out", "transition.wav", "Output WAV file")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *fromURL == "" || *toURL == "" {
		log.Fatal("Missing required flags: -from and -to")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal(err)
		}
		cfg = config.Default()
	}
	cfg.Sources.AllowLocal = true

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	req := domain.MixRequest{
		From: sourceSpec(*fromURL, *fromStart, *fromDuration),
		To:   sourceSpec(*toURL, *toStart, *toDuration),
	}
	if *crossfade > 0 {
		req.CrossfadeSec = crossfade
	}

	loader := source.NewLoader(downloader.NewRegistry(cfg), audio.NewChainDecoder(), cfg.Mix.TempDir, cfg.Mix.FetchTimeout)
	mixer := service.NewMixer(loader, cfg.Mix)

	bar := progressbar.NewOptions(
		service.ProgressComplete,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{Saucer: "=", SaucerHead: ">", SaucerPadding: ".", BarStart: "[", BarEnd: "]"}), // ThemeASCII (v3.16+)
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription("[cyan][1/4][reset] Starting..."),
	)

	tracker := progress.NewTracker()
	tracker.AddListener(func(e progress.Event) {
		if e.Stage == progress.StageError {
			return
		}
		if e.SourceDetails != nil {
			bar.Describe(fmt.Sprintf("[cyan][%s][reset] Loaded %.1fs", e.SourceDetails.Role, e.SourceDetails.Duration))
			return
		}
		bar.Describe(fmt.Sprintf("[cyan][%s][reset] %s", e.Stage, e.Message))
		_ = bar.Set(int(e.Progress))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := mixer.Render(ctx, req, tracker)
	if err != nil {
		fmt.Println()
		log.Fatal(err)
	}

	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatal(err)
	}
	_ = bar.Finish()
	fmt.Printf("\nWrote %s (%d bytes)\n", *out, len(data))
}

// sourceSpec turns a CLI argument into a source. Plain paths become file:// URLs.
func sourceSpec(arg string, start, duration float64) domain.SourceSpec {
	spec := domain.SourceSpec{URL: arg, StartSec: start}
	if duration > 0 {
		spec.DurationSec = &duration
	}

	if u, err := url.Parse(arg); err != nil || u.Scheme == "" {
		if abs, err := filepath.Abs(arg); err == nil {
			spec.URL = (&url.URL{Scheme: "file", Path: abs}).String()
		}
	}
	return spec
}

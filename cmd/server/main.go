package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/jaki95/dj-transition/config"
	"github.com/jaki95/dj-transition/internal/audio"
	"github.com/jaki95/dj-transition/internal/downloader"
	"github.com/jaki95/dj-transition/internal/server"
	"github.com/jaki95/dj-transition/internal/service"
	"github.com/jaki95/dj-transition/internal/source"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")
	port := flag.String("port", "", "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	decoder := audio.NewChainDecoder()
	loader := source.NewLoader(downloader.NewRegistry(cfg), decoder, cfg.Mix.TempDir, cfg.Mix.FetchTimeout)
	mixer := service.NewMixer(loader, cfg.Mix)

	srv := server.New(cfg, mixer)

	slog.Info("Starting DJ transition API server",
		"port", cfg.Server.Port,
		"allowedOrigin", cfg.Server.AllowedOrigin,
		"sampleRate", cfg.Mix.SampleRate,
	)
	if err := srv.Start(cfg.Server.Port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

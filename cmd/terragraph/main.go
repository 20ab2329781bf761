// Command terragraph builds a navigable terrain graph over a configured
// extent: obstacles in, tiled parallel construction, one merged global
// graph out.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"terragraph/internal/chunk"
	"terragraph/internal/config"
	"terragraph/internal/geom"
	"terragraph/internal/logger"
	"terragraph/internal/pipeline"
	"terragraph/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to run configuration")
	workers := flag.Int("workers", 0, "worker count override (0 = hardware concurrency)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logger is not up yet.
		os.Stderr.WriteString("terragraph: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer func() { _ = log.Sync() }()

	obstacles, err := chunk.LoadObstacles(cfg.Features.Dir, cfg.Sampling.SimplifyTolerance)
	if err != nil {
		log.Fatal("loading obstacles", zap.Error(err))
	}
	log.Info("obstacles loaded", zap.Int("count", len(obstacles)), zap.String("dir", cfg.Features.Dir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &pipeline.Pipeline{
		Cfg:    cfg,
		Engine: geom.NewPlanar(cfg.Sampling.ConnectionRadius),
		Store:  store.NewMemStore(),
		Log:    log,
	}

	if _, _, err := p.Run(ctx, obstacles); err != nil {
		log.Error("run failed", zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"writegeist/internal/config"
	"writegeist/internal/daemon"
	"writegeist/internal/ingest"
	"writegeist/internal/llm"
	"writegeist/internal/logging"
	"writegeist/internal/notifications"
	"writegeist/internal/project"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := project.Open(cfg)
	if err != nil {
		logger.Error("open project store", logging.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	marker := project.NewMarker(cfg.SyncMarkerPath())
	service := project.NewService(store, marker, logger)
	pipeline := ingest.NewPipeline(llm.NewClient(cfg.LLM), logger)
	notifier := notifications.NewService(cfg)

	d, err := daemon.New(cfg, service, pipeline, notifier, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("writegeistd ready",
		logging.String("address", d.Addr()),
		logging.Bool("ingest_available", pipeline.Available()))

	<-ctx.Done()
	d.Stop()
	logger.Info("writegeistd shutting down")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/b99631944-eng/Bennett-lab/internal/config"
	"github.com/b99631944-eng/Bennett-lab/internal/core/engine"
	"github.com/b99631944-eng/Bennett-lab/internal/core/observability/log"
	"github.com/b99631944-eng/Bennett-lab/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	if cfg.Engine.StartStage == "" {
		cfg.Engine.StartStage = "orbit"
	}

	logger := log.New(log.ParseLevel(cfg.Log.Level))
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(cfg, logger)
	eng.Stages.Register("orbit", newOrbitStage(12))
	srv := server.New(cfg.Server, logger, eng)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	if err := eng.Start(); err != nil {
		logger.Fatal("engine start failed", zap.Error(err))
	}
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}

	<-stopCh
	cancel()
	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("server stop failed", zap.Error(err))
	}
	eng.Shutdown()
}

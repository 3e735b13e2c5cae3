// docsmith serves the document assembly tools over MCP on stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docsmith/docsmith/internal/assembly"
	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/logger"
	"github.com/docsmith/docsmith/internal/mcp"
	"github.com/docsmith/docsmith/internal/tools"
	"github.com/docsmith/docsmith/internal/tools/documents"
	"github.com/docsmith/docsmith/internal/watcher"
	"github.com/docsmith/docsmith/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol, so all logging goes to stderr.
	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	log := logger.ForComponent("main")

	if err := cfg.EnsureDirectories(); err != nil {
		log.Error("failed to prepare directories", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outputs, err := assembly.NewOutputStore(cfg.OutputDir, cfg.IndexPath)
	if err != nil {
		log.Error("failed to open output store", "error", err)
		os.Exit(1)
	}
	defer outputs.Close()

	templates := assembly.NewTemplateStore(cfg.TemplatesDir, cfg.Watcher.IgnorePatterns)
	svc := assembly.NewService(templates, outputs, cfg.BaseURL)

	registry := tools.NewRegistry()
	if err := documents.RegisterAll(registry, svc); err != nil {
		log.Error("failed to register tools", "error", err)
		os.Exit(1)
	}

	startWatcher(ctx, cfg, log)
	go retentionLoop(ctx, cfg, outputs, log)

	log.Info("starting MCP server",
		"version", version.Version,
		"templates_dir", cfg.TemplatesDir,
		"tools", registry.Names())

	server := mcp.NewServer(registry)
	if err := server.ServeStdio(ctx); err != nil && ctx.Err() == nil {
		log.Error("server terminated", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func startWatcher(ctx context.Context, cfg *config.Config, log *slog.Logger) {
	if !cfg.Watcher.Enabled {
		return
	}
	w, err := watcher.New(cfg.TemplatesDir, watcher.Config{
		DebounceWindow: cfg.Watcher.DebounceWindow,
		MaxBatchSize:   cfg.Watcher.MaxBatchSize,
		IgnorePatterns: cfg.Watcher.IgnorePatterns,
	})
	if err != nil {
		log.Warn("template watcher unavailable", "error", err)
		return
	}
	if err := w.Start(ctx); err != nil {
		log.Warn("template watcher failed to start", "error", err)
	}
}

func retentionLoop(ctx context.Context, cfg *config.Config, outputs *assembly.OutputStore, log *slog.Logger) {
	if cfg.Retention.MaxAge <= 0 || cfg.Retention.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.Retention.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := outputs.Sweep(cfg.Retention.MaxAge)
			if err != nil {
				log.Warn("retention sweep failed", "error", err)
			} else if removed > 0 {
				log.Info("retention sweep removed artifacts", "count", removed)
			}
		}
	}
}

// Package main provides the ccrecall MCP server entry point.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/richardwhiteii/ccrecall/internal/config"
	"github.com/richardwhiteii/ccrecall/internal/corpus"
	"github.com/richardwhiteii/ccrecall/internal/mcp"
	"github.com/richardwhiteii/ccrecall/internal/recall"
	"github.com/richardwhiteii/ccrecall/internal/rlm"
	"github.com/richardwhiteii/ccrecall/internal/status"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	projectsDir := flag.String("projects-dir", "", "Corpus root (default: ~/.claude/projects)")
	httpAddr := flag.String("http-addr", "", "Optional status endpoint address (e.g. 127.0.0.1:7380)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// MCP uses stdout for communication, so log to stderr
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}
	if *projectsDir != "" {
		cfg.ProjectsDir = *projectsDir
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	// Misconfiguration is fatal here, before any connection attempt.
	if err := cfg.ValidateBackend(); err != nil {
		log.Fatal().Err(err).Msg("Invalid backend configuration")
	}

	cache := corpus.NewCache()
	scanner := corpus.NewScanner(corpus.ScannerConfig{
		Root:            cfg.ProjectsDir,
		MaxSessionBytes: cfg.MaxSessionBytes,
		MaxSessionLines: cfg.MaxSessionLines,
		Cache:           cache,
	})

	watcher, err := corpus.NewWatcher(cfg.ProjectsDir, cache)
	if err != nil {
		log.Warn().Err(err).Msg("Corpus watcher unavailable, metadata cache will rely on revalidation")
	} else {
		if err := watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start corpus watcher")
		}
		defer watcher.Stop()
	}

	client := rlm.NewClient(rlm.Config{
		Command:     cfg.RLMCommand,
		Args:        cfg.RLMArgs,
		Dir:         cfg.RLMServerPath,
		MaxAttempts: cfg.ConnectAttempts,
		BaseBackoff: time.Second,
		CallTimeout: cfg.CallTimeout,
	})
	defer client.Close()

	engine := recall.NewEngine(scanner, client, cfg)

	if cfg.HTTPAddr != "" {
		svc := status.NewService(cfg.HTTPAddr, scanner, client, cache)
		go svc.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = svc.Shutdown(ctx)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down MCP server")
		client.Close()
		os.Exit(0)
	}()

	server := mcp.NewServer(scanner, engine, Version)
	log.Info().Str("projects_dir", cfg.ProjectsDir).Str("version", Version).Msg("Starting MCP server")
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}

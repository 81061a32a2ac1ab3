// Package main provides a one-shot CLI for exercising the recall pipeline
// without an MCP client: run a single query and print the JSON response.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/richardwhiteii/ccrecall/internal/config"
	"github.com/richardwhiteii/ccrecall/internal/corpus"
	"github.com/richardwhiteii/ccrecall/internal/recall"
	"github.com/richardwhiteii/ccrecall/internal/rlm"
	"github.com/richardwhiteii/ccrecall/pkg/models"
)

func main() {
	projectsDir := flag.String("projects-dir", "", "Corpus root (default: ~/.claude/projects)")
	project := flag.String("project", "", "Limit to projects whose path contains this substring")
	days := flag.Int("days", 7, "Day window for the timeline command")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: recall [flags] projects | timeline | <query...>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}
	if *projectsDir != "" {
		cfg.ProjectsDir = *projectsDir
	}

	scanner := corpus.NewScanner(corpus.ScannerConfig{
		Root:            cfg.ProjectsDir,
		MaxSessionBytes: cfg.MaxSessionBytes,
		MaxSessionLines: cfg.MaxSessionLines,
	})

	switch args[0] {
	case "projects":
		listing, err := scanner.ListProjects()
		exitOn(err)
		printJSON(listing)

	case "timeline":
		sessions, err := scanner.RecentSessions(*days, *project)
		exitOn(err)
		if sessions == nil {
			sessions = []models.Session{}
		}
		printJSON(models.TimelineResponse{
			Sessions:      sessions,
			TotalSessions: len(sessions),
			DateRange:     fmt.Sprintf("Last %d days", *days),
		})

	default:
		query := ""
		for i, a := range args {
			if i > 0 {
				query += " "
			}
			query += a
		}

		if err := cfg.ValidateBackend(); err != nil {
			log.Fatal().Err(err).Msg("Invalid backend configuration")
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
		response, err := engine.Recall(context.Background(), query, *project)
		if errors.Is(err, recall.ErrMissingQuery) {
			printJSON(models.ErrorResponse{
				Error:   models.ErrCodeMissingQuery,
				Message: "Query parameter is required",
			})
			os.Exit(1)
		}
		exitOn(err)
		printJSON(response)
	}
}

func printJSON(payload interface{}) {
	data, err := json.MarshalIndent(payload, "", "  ")
	exitOn(err)
	fmt.Println(string(data))
}

func exitOn(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

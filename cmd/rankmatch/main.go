// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/rankmatch"
	"github.com/poiesic/rankmatch/config"
	"github.com/poiesic/rankmatch/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

var errAnalysisFailed = errors.New("analysis failed")

// newEngine opens the engine for a command. Tests replace it to inject a
// mock provider.
var newEngine = func(ctx context.Context, cfg *config.Config) (*rankmatch.Engine, error) {
	return rankmatch.NewEngine(ctx, cfg, rankmatch.WithLogger(slog.Default()))
}

var metricsServer *http.Server

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "rankmatch",
		Usage: "Match crew resumes in a rank folder against a requirement",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				EnvVars: []string{config.EnvConfigPath},
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return startMetrics(c)
		},
		After: stopMetrics,
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Analyze the resumes of a rank against a query",
				Action: analyzeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "rank",
						Aliases:  []string{"r"},
						Usage:    "Rank whose folder is analyzed",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Requirement to match, e.g. \"US visa AND tanker experience\"",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "summary",
						Usage: "Print only the aggregated report instead of streaming events",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Bring the embeddings of a rank folder up to date",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "rank",
						Aliases:  []string{"r"},
						Usage:    "Rank whose folder is indexed",
						Required: true,
					},
				},
			},
			{
				Name:  "feedback",
				Usage: "Record or list corrections of match decisions",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Record a correction",
						Action: feedbackAddCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "file", Usage: "Resume file name", Required: true},
							&cli.StringFlag{Name: "query", Usage: "Query the decision was made for", Required: true},
							&cli.StringFlag{Name: "llm-decision", Usage: "Decision the model made", Required: true},
							&cli.StringFlag{Name: "llm-reason", Usage: "Reason the model gave"},
							&cli.Float64Flag{Name: "llm-confidence", Usage: "Confidence the model reported", Value: 0.5},
							&cli.StringFlag{Name: "user-decision", Usage: "Correct decision", Required: true},
							&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
						},
					},
					{
						Name:   "list",
						Usage:  "List recent corrections, newest first",
						Action: feedbackListCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Usage: "Maximum number of corrections to show", Value: 20},
						},
					},
				},
			},
			{
				Name:   "models",
				Usage:  "List embedding models offered by the provider",
				Action: modelsCommand,
			},
		},
	}
}

func openEngine(c *cli.Context) (*rankmatch.Engine, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	engine, err := newEngine(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func analyzeCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	rank, query := c.String("rank"), c.String("query")
	enc := json.NewEncoder(c.App.Writer)

	if c.Bool("summary") {
		report, err := engine.Run(c.Context, rank, query)
		if err != nil {
			return err
		}
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if !report.Success {
			return fmt.Errorf("%w: %s", errAnalysisFailed, report.Message)
		}
		return nil
	}

	var failure string
	for ev := range engine.Analyze(c.Context, rank, query) {
		if err := enc.Encode(ev); err != nil {
			return err
		}
		if ev.Type == core.EventError {
			failure = ev.Message
		}
	}
	if err := c.Context.Err(); err != nil {
		return err
	}
	if failure != "" {
		return fmt.Errorf("%w: %s", errAnalysisFailed, failure)
	}
	return nil
}

func indexCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	rank := c.String("rank")
	fmt.Fprintf(c.App.ErrWriter, "Folder: %s\n", engine.RankFolder(rank))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", engine.EmbeddingModel())
	fmt.Fprintln(c.App.ErrWriter)

	tracker := newProgressTracker(c.App.Writer)
	var failure string
	for ev := range engine.Index(c.Context, rank) {
		tracker.Observe(ev)
		if ev.Type == core.EventError {
			failure = ev.Message
		}
	}
	if failure != "" {
		return fmt.Errorf("indexing failed: %s", failure)
	}
	return c.Context.Err()
}

func feedbackAddCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	record := &core.FeedbackRecord{
		FileName:      c.String("file"),
		Query:         c.String("query"),
		LLMDecision:   c.String("llm-decision"),
		LLMReason:     c.String("llm-reason"),
		LLMConfidence: c.Float64("llm-confidence"),
		UserDecision:  c.String("user-decision"),
		UserNotes:     c.String("notes"),
		Timestamp:     time.Now().UTC(),
	}
	if err := engine.StoreFeedback(c.Context, record); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Stored feedback #%d for %s\n", record.Id, record.FileName)
	return nil
}

func feedbackListCommand(c *cli.Context) error {
	limit := c.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	records, err := engine.ListFeedback(c.Context, limit)
	if err != nil {
		return fmt.Errorf("failed to list feedback: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(c.App.Writer, "No feedback recorded.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(c.App.Writer, "#%d %s %s: %s -> %s (%q)\n",
			r.Id, r.Timestamp.Format(time.RFC3339), r.FileName, r.LLMDecision, r.UserDecision, r.Query)
		if r.UserNotes != "" {
			fmt.Fprintf(c.App.Writer, "    %s\n", r.UserNotes)
		}
	}
	return nil
}

func modelsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	models, err := engine.ListEmbeddingModels(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list embedding models: %w", err)
	}
	current := engine.EmbeddingModel()
	for _, m := range models {
		marker := " "
		if m == current {
			marker = "*"
		}
		fmt.Fprintf(c.App.Writer, "%s %s\n", marker, m)
	}
	return nil
}

func startMetrics(c *cli.Context) error {
	addr := c.String("metrics-addr")
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)
	return nil
}

func stopMetrics(c *cli.Context) error {
	if metricsServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := metricsServer.Shutdown(ctx)
	metricsServer = nil
	return err
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

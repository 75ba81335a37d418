// Copyright 2025 The Historia Authors
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jagath-jaikumar/historia"
	"github.com/jagath-jaikumar/historia/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "historia",
		Usage: "Ingest and index documents from external corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the ingestion pipeline from a configuration file",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML run configuration",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "use-all",
						Usage: "Full resync: process all candidate URLs regardless of persisted state",
					},
					&cli.StringFlag{
						Name:  "runner",
						Usage: "Runner strategy (parallel, sequential)",
						Value: pipeline.RunnerParallel,
					},
					&cli.StringFlag{
						Name:  "reports-dir",
						Usage: "Directory for failure report files (defaults to stderr reports)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Override the configured run retry ceiling",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.IsSet("max-retries") && c.Int("max-retries") <= 0 {
		return fmt.Errorf("invalid max-retries %d: must be a positive integer", c.Int("max-retries"))
	}

	config, err := pipeline.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("max-retries") {
		config.MaxRetries = c.Int("max-retries")
	}

	db, err := historia.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var opts []pipeline.Option

	switch c.String("runner") {
	case pipeline.RunnerParallel:
		// Default runner.
	case pipeline.RunnerSequential:
		opts = append(opts, pipeline.WithRunner(pipeline.NewSequentialRunner(db.DocumentRepository())))
	default:
		return fmt.Errorf("invalid runner %q: must be %q or %q", c.String("runner"), pipeline.RunnerParallel, pipeline.RunnerSequential)
	}

	if dir := c.String("reports-dir"); dir != "" {
		reporter, err := pipeline.NewFileReporter(dir)
		if err != nil {
			return fmt.Errorf("failed to create reports directory: %w", err)
		}
		opts = append(opts, pipeline.WithReporter(reporter))
	}

	p, err := db.NewPipeline(config, opts...)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, c.Bool("use-all"))
	if err != nil {
		return err
	}

	fmt.Printf("run complete: %d urls, %d fetched, %d persisted, %d indexed, %d failures (%s)\n",
		report.URLs, report.Fetched, report.Persisted, report.Indexed, report.TotalFailures(), report.Elapsed)
	return nil
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

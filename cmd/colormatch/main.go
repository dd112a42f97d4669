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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/colormatch/config"
)

const configKey = "config"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "colormatch",
		Usage:    "Annotate a product catalog with dominant colors and find similar items",
		Metadata: map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"COLORMATCH_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML configuration file",
				EnvVars: []string{"COLORMATCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides store.path)",
				EnvVars: []string{"COLORMATCH_DB"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve Prometheus metrics on this address while the command runs",
				EnvVars: []string{"COLORMATCH_METRICS_ADDR"},
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import catalog records from a delimited file",
				Action: importCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the delimited source file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "delimiter",
						Usage: "Field delimiter (overrides import.delimiter)",
					},
					&cli.BoolFlag{
						Name:  "no-header",
						Usage: "The source file has no header line",
					},
				}, jobFlags()...),
			},
			{
				Name:   "backfill",
				Usage:  "Extract the dominant color of every item that lacks one",
				Action: backfillCommand,
				Flags: append(append([]cli.Flag{
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Catalog items fetched per query (overrides batch.page_size)",
					},
				}, jobFlags()...), visionFlags()...),
			},
			{
				Name:      "annotate",
				Usage:     "Extract and store the dominant color of one item",
				ArgsUsage: "ID",
				Action:    annotateCommand,
				Flags:     visionFlags(),
			},
			{
				Name:      "color",
				Usage:     "Print the stored color of an item",
				ArgsUsage: "ID",
				Action:    colorCommand,
			},
			{
				Name:      "similar",
				Usage:     "List the items closest in color to an item",
				ArgsUsage: "ID",
				Action:    similarCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of items to list",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "rounding",
						Usage: "Lab rounding mode (legacy, half-away-from-zero)",
						Value: "legacy",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Print a catalog item",
				ArgsUsage: "ID",
				Action:    showCommand,
			},
			{
				Name:   "jobs",
				Usage:  "List finished import and backfill jobs",
				Action: jobsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of jobs to list",
						Value:   20,
					},
				},
			},
			{
				Name:   "init-config",
				Usage:  "Write a sample configuration file",
				Action: initConfigCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Destination (defaults to ~/.config/colormatch/config.toml)",
					},
				},
			},
		},
	}
}

func jobFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Pooled workers per job (overrides batch.workers)",
		},
		&cli.IntFlag{
			Name:  "queue",
			Usage: "Records that may wait for a free worker (overrides batch.queue_capacity)",
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Records committed per transaction (overrides batch.chunk_size)",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Print a progress meter to stderr",
		},
	}
}

func visionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Color extractor: local or openai (overrides vision.backend)",
		},
		&cli.StringFlag{
			Name:    "vision-host",
			Usage:   "OpenAI-compatible API base URL (overrides vision.host)",
			EnvVars: []string{"COLORMATCH_VISION_HOST"},
		},
		&cli.StringFlag{
			Name:    "vision-model",
			Usage:   "Multimodal model name (overrides vision.model)",
			EnvVars: []string{"COLORMATCH_VISION_MODEL"},
		},
		&cli.StringFlag{
			Name:    "vision-token",
			Usage:   "API token (overrides vision.token)",
			EnvVars: []string{"COLORMATCH_VISION_TOKEN", "OPENAI_API_KEY"},
		},
	}
}

// setup loads the configuration file and installs the logger.
func setup(c *cli.Context) error {
	cfg, path, exists, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyGlobalOverrides(c, cfg)

	levelStr := cfg.LogLevel
	if c.IsSet("log-level") {
		levelStr = strings.ToLower(c.String("log-level"))
	}
	level, err := parseLevel(levelStr)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if exists {
		logger.Debug("loaded configuration", "path", path)
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
}

func applyGlobalOverrides(c *cli.Context, cfg *config.Config) {
	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
		cfg.Store.InMemory = false
	}
	if c.IsSet("metrics-addr") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = c.String("metrics-addr")
	}
}

func loadedConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	cfg := config.Default()
	return &cfg
}

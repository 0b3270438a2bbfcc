// Copyright 2026 Kirezi Systems
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

	"github.com/kirezi/inyishu"
	"github.com/kirezi/inyishu/ai"
	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/search"
	"github.com/kirezi/inyishu/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "inyishu",
		Usage: "Closed-corpus question answering with hybrid retrieval",
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
				Name:   "build",
				Usage:  "Build index artifacts from a corpus file",
				Action: buildCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "corpus",
						Aliases:  []string{"c"},
						Usage:    "Path to the corpus JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artifacts",
						Aliases:  []string{"a"},
						Usage:    "Directory for the artifact database",
						Required: true,
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Answer one question against the corpus",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "corpus",
						Aliases:  []string{"c"},
						Usage:    "Path to the corpus JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "artifacts",
						Aliases: []string{"a"},
						Usage:   "Directory for the artifact database (omit to build in memory)",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Confidence gate threshold",
						Value: search.DefaultThreshold,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print per-method candidates and the fused ranking",
					},
				),
			},
			{
				Name:   "inspect",
				Usage:  "Print the manifest of saved artifacts",
				Action: inspectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "artifacts",
						Aliases:  []string{"a"},
						Usage:    "Directory of the artifact database",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "bge-m3",
		},
		&cli.StringFlag{
			Name:  "polish-host",
			Usage: "Chat service host URL for answer polishing (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "polish-model",
			Usage: "Chat model name for answer polishing (omit to disable polishing)",
		},
	}
}

func aiConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithPolishHost(c.String("polish-host")),
		ai.WithPolishModel(c.String("polish-model")),
	)
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := inyishu.Open(ctx, c.String("corpus"),
		inyishu.WithAIConfig(aiConfig(c)),
		inyishu.WithArtifactPath(c.String("artifacts")))
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	defer engine.Close()

	m := engine.Manifest()
	fmt.Printf("Built %d records (model %s, dim %d)\n", m.RecordCount, m.EmbeddingModel, m.Dimension)
	fmt.Printf("Fingerprint: %s\n", m.Fingerprint)
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	opts := []inyishu.Option{
		inyishu.WithAIConfig(aiConfig(c)),
		inyishu.WithSearchOptions(search.WithThreshold(c.Float64("threshold"))),
	}
	if dir := c.String("artifacts"); dir != "" {
		opts = append(opts, inyishu.WithArtifactPath(dir))
	}

	engine, err := inyishu.Open(ctx, c.String("corpus"), opts...)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	var monitor search.Monitor
	if c.Bool("verbose") {
		monitor = &printMonitor{}
	}

	answer := engine.AskWithMonitor(ctx, question, monitor)
	printAnswer(answer)
	return nil
}

func inspectCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("artifacts"), false)
	if err != nil {
		return fmt.Errorf("failed to open artifact database: %w", err)
	}
	store, err := badger.NewSnapshotStore(backend)
	if err != nil {
		backend.Close()
		return err
	}
	defer store.Close()

	m, err := store.Manifest(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Embedding model: %s\n", m.EmbeddingModel)
	fmt.Printf("Dimension:       %d\n", m.Dimension)
	fmt.Printf("Records:         %d\n", m.RecordCount)
	fmt.Printf("Fingerprint:     %s\n", m.Fingerprint)
	fmt.Printf("Built at:        %s\n", m.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("BM25:            k1=%.2f b=%.2f\n", m.BM25K1, m.BM25B)
	return nil
}

func printAnswer(a *core.Answer) {
	if !a.Known {
		fmt.Printf("No confident answer (confidence %.3f, %s)\n", a.Confidence, a.Latency)
		return
	}

	fmt.Println(a.Text)
	fmt.Printf("\nSource: %s [%s, importance %s]\n", a.Citation, a.Category, a.Importance)
	fmt.Printf("Confidence: %.3f (%s)\n", a.Confidence, a.Latency)
	if len(a.Related) > 0 {
		fmt.Println("Related:")
		for _, r := range a.Related {
			fmt.Printf("  [%d] %s\n", r.ID, r.Question)
		}
	}
	if len(a.Suggestions) > 0 {
		fmt.Println("See also:")
		for _, s := range a.Suggestions {
			fmt.Printf("  [%d] %s\n", s.ID, s.Question)
		}
	}
}

// printMonitor dumps each pipeline stage to stdout for --verbose.
type printMonitor struct{}

var _ search.Monitor = (*printMonitor)(nil)

func (p *printMonitor) Start(question string) {
	fmt.Printf("question: %q\n", question)
}

func (p *printMonitor) Normalized(query string) {
	fmt.Printf("normalized: %q\n", query)
}

func (p *printMonitor) MethodReturned(list core.RankedList) {
	if list.Degraded {
		fmt.Printf("%s: degraded\n", list.Method)
		return
	}
	fmt.Printf("%s: %d candidates\n", list.Method, len(list.Candidates))
	for _, cand := range list.Candidates {
		fmt.Printf("  #%d id=%d score=%.4f\n", cand.Rank, cand.ID, cand.Score)
	}
}

func (p *printMonitor) Fused(results []core.FusedResult) {
	fmt.Printf("fused: %d results\n", len(results))
	for i, r := range results {
		fmt.Printf("  #%d id=%d score=%.5f methods=%v\n", i+1, r.ID, r.Score, r.Methods)
	}
}

func (p *printMonitor) GateDecision(accepted bool, confidence, threshold float64) {
	fmt.Printf("gate: confidence=%.3f threshold=%.3f accepted=%v\n", confidence, threshold, accepted)
}

func (p *printMonitor) Finish(_ *core.Answer) {}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

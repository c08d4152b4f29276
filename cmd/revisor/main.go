// Copyright 2026 Pagemark Labs
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

	revisor "github.com/pagemark/revisor"
	"github.com/pagemark/revisor/compare"
	"github.com/pagemark/revisor/config"
	"github.com/pagemark/revisor/core"
	"github.com/pagemark/revisor/ingest"
	"github.com/pagemark/revisor/pdf"
	"github.com/pagemark/revisor/storage"
)

func main() {
	app := &cli.App{
		Name:  "revisor",
		Usage: "Versioned PDF retrieval and version-diff engine",
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
				Usage:   "Path to YAML config file",
				Value:   "revisor.yaml",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the store directory (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a PDF or text file as a document version",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "version",
						Aliases:  []string{"v"},
						Usage:    "Version label for this document",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "doc",
						Usage: "Document ID (generated when omitted)",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title stored with every chunk",
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Replace an existing chunk set for this version",
					},
				},
			},
			{
				Name:      "ingest-url",
				Usage:     "Download and ingest one or more PDFs by URL",
				ArgsUsage: "<url> [url ...]",
				Action:    ingestURLCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "version",
						Aliases:  []string{"v"},
						Usage:    "Version label applied to every document",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "doc",
						Usage: "Document ID for a single URL (generated when omitted)",
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Replace an existing chunk set for this version",
					},
					&cli.IntFlag{
						Name:  "parallel",
						Usage: "Number of URLs processed concurrently",
						Value: 3,
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Search the stored documents",
				ArgsUsage: "<query>",
				Action:    queryCommand,
				Flags:     searchFlags(),
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the stored documents",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     searchFlags(),
			},
			{
				Name:      "versions",
				Usage:     "List stored versions of a document",
				ArgsUsage: "<document-id>",
				Action:    versionsCommand,
			},
			{
				Name:      "compare",
				Usage:     "Diff two stored versions of a document",
				ArgsUsage: "<document-id> <old-version> <new-version>",
				Action:    compareCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "full",
						Usage: "Print unchanged records too",
					},
				},
			},
			{
				Name:      "summarize",
				Usage:     "Generate a prose summary of the differences between two versions",
				ArgsUsage: "<document-id> <old-version> <new-version>",
				Action:    summarizeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "question",
						Aliases: []string{"q"},
						Usage:   "Ask a specific question about the changes instead of a summary",
					},
				},
			},
			{
				Name:   "collections",
				Usage:  "List collections in the store",
				Action: collectionsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "doc",
			Usage: "Restrict the search to one document",
		},
		&cli.StringFlag{
			Name:  "doc-version",
			Usage: "Restrict the search to one version (requires --doc)",
		},
	}
}

func openStore(c *cli.Context) (*revisor.Store, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if dbPath := c.String("db"); dbPath != "" {
		cfg.Store.Path = dbPath
	}

	store, err := revisor.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func searchFilter(c *cli.Context) *storage.SearchFilter {
	doc := c.String("doc")
	if doc == "" {
		return nil
	}
	return &storage.SearchFilter{
		DocumentID: doc,
		Version:    c.String("doc-version"),
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	filePath := c.Args().First()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := &ingest.IngestOptions{
		DocumentID: c.String("doc"),
		Replace:    c.Bool("replace"),
		Title:      c.String("title"),
		Filename:   filePath,
	}

	ctx := context.Background()
	text := string(data)
	if strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		var info pdf.DocumentInfo
		text, info, err = pdf.NewExtractor().ExtractText(ctx, data)
		if err != nil {
			return err
		}
		if opts.Title == "" {
			opts.Title = info.Title
		}
		opts.PageCount = info.PageCount
	}

	pipeline, err := store.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	result, err := pipeline.IngestText(ctx, text, c.String("version"), opts)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %s@%s into %s (%d chunks)\n",
		result.DocumentID, result.Version, result.Collection, result.ChunkCount)
	return nil
}

func ingestURLCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected at least one URL argument")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline, err := store.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()
	version := c.String("version")
	opts := &ingest.IngestOptions{
		DocumentID: c.String("doc"),
		Replace:    c.Bool("replace"),
	}

	if c.NArg() == 1 {
		result, err := pipeline.IngestURL(ctx, c.Args().First(), version, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %s@%s (%d chunks)\n",
			result.DocumentID, result.Version, result.ChunkCount)
		return nil
	}

	results, err := pipeline.IngestURLs(ctx, c.Args().Slice(), version, c.Int("parallel"), opts)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		status := "ok"
		if !result.Success {
			status = "failed"
			failed++
		}
		fmt.Printf("%-6s %s  %s\n", status, result.URL, result.Message)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs failed", failed, len(results))
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := store.NewEngine()
	if err != nil {
		return err
	}

	result, err := engine.Query(context.Background(), c.Args().First(), searchFilter(c))
	if err != nil {
		return err
	}

	if len(result.Chunks) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for rank, hit := range result.Chunks {
		fmt.Printf("%d. [%.3f] %s@%s #%d\n%s\n\n",
			rank+1, hit.Score, hit.Chunk.DocumentID, hit.Chunk.Version,
			hit.Chunk.ChunkIndex, hit.Chunk.Text)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one question argument")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := store.NewEngine()
	if err != nil {
		return err
	}

	answer, err := engine.Answer(context.Background(), c.Args().First(), searchFilter(c))
	if err != nil {
		return err
	}

	fmt.Println(answer.Response)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, source := range answer.Sources {
			fmt.Printf("  %s@%s #%d (%.3f)\n",
				source.DocumentID, source.Version, source.ChunkIndex, source.Score)
		}
	}
	return nil
}

func versionsCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document-id argument")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	infos, err := store.Index().ListVersions(context.Background(), c.Args().First())
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No versions found.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  chunks=%d pages=%d ingested=%s  %s\n",
			info.Version, info.ChunkCount, info.PageCount,
			info.IngestedAt.Format("2006-01-02 15:04"), info.Title)
	}
	return nil
}

func compareCommand(c *cli.Context) error {
	changeSet, _, store, err := runCompare(c)
	if err != nil {
		return err
	}
	defer store.Close()

	unchanged, modified, added, removed := changeSet.Counts()
	fmt.Printf("%s: %s -> %s  (%d unchanged, %d modified, %d added, %d removed)\n",
		changeSet.DocumentID, changeSet.OldVersion, changeSet.NewVersion,
		unchanged, modified, added, removed)

	for _, record := range changeSet.Records {
		switch record.Kind {
		case core.ChangeUnchanged:
			if c.Bool("full") {
				fmt.Printf("  = #%d\n", record.OldIndex)
			}
		case core.ChangeModified:
			fmt.Printf("  ~ #%d -> #%d (%.3f)\n    %s\n",
				record.OldIndex, record.NewIndex, record.Similarity, record.Diff)
		case core.ChangeAdded:
			fmt.Printf("  + #%d\n    %s\n", record.NewIndex, record.NewText)
		case core.ChangeRemoved:
			fmt.Printf("  - #%d\n    %s\n", record.OldIndex, record.OldText)
		}
	}
	return nil
}

func summarizeCommand(c *cli.Context) error {
	changeSet, comparator, store, err := runCompare(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var output string
	if question := c.String("question"); question != "" {
		output, err = comparator.QueryChanges(ctx, changeSet, question)
	} else {
		output, err = comparator.SummarizeChanges(ctx, changeSet)
	}
	if err != nil {
		return err
	}

	fmt.Println(output)
	return nil
}

func runCompare(c *cli.Context) (*core.ChangeSet, *compare.Comparator, *revisor.Store, error) {
	if c.NArg() != 3 {
		return nil, nil, nil, fmt.Errorf("expected <document-id> <old-version> <new-version>")
	}
	args := c.Args().Slice()

	store, err := openStore(c)
	if err != nil {
		return nil, nil, nil, err
	}

	comparator, err := store.NewComparator()
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	changeSet, err := comparator.Compare(context.Background(), args[0], args[1], args[2])
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return changeSet, comparator, store, nil
}

func collectionsCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.Index().ListCollections(context.Background())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No collections.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
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

package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/docmeta/internal/common"
	"github.com/dtnitsch/docmeta/pkg/db"
	"github.com/dtnitsch/docmeta/pkg/manifest"
	"github.com/dtnitsch/docmeta/pkg/mapreduce"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
	"github.com/dtnitsch/docmeta/pkg/storage"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func GenerateAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	paths := c.Args().Slice()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No files provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  docmeta generate report.pdf notes.txt")
		fmt.Fprintln(os.Stderr, "  docmeta generate --format text --output-dir out memo.docx")
		return cli.Exit("", 2)
	}

	cfg, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit("", 2)
	}

	p, closeFn, err := common.BuildPipeline(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		return cli.Exit("", 2)
	}
	defer closeFn()

	history, err := common.OpenHistory(cfg)
	if err != nil {
		logger.Error("failed to open history", "error", err)
		return cli.Exit("", 2)
	}
	if history != nil {
		defer history.Close()
	}

	final, err := Process(c.Context, logger, p, paths, c.Int("workers"), c.Bool("manifest"))
	if err != nil {
		logger.Error("failed to write manifest", "error", err)
	}
	if history != nil {
		if err := Record(history, final, p.Options().Format); err != nil {
			logger.Error("failed to record history", "error", err)
		}
	}
	return finish(final, strings.ToLower(cfg.Output.Format))
}

// Process runs the batch and builds the stdout summary. The manifest is
// written next to the sidecars when writeManifest is set.
func Process(ctx context.Context, logger *slog.Logger, p *pipeline.Pipeline, paths []string, workers int, writeManifest bool) (*FinalOutput, error) {
	startTime := time.Now()
	results, wordCounts := run(ctx, logger, p, paths, workers)

	final := &FinalOutput{
		Results: make([]ResultOutput, 0, len(results)),
		Stats: Stats{
			TotalFiles:  len(results),
			TopKeywords: mapreduce.TopKeywords(wordCounts, 25),
		},
	}
	for _, r := range results {
		out := ResultOutput{Filename: r.Path, outcome: r.Outcome}
		if r.Outcome.Failed() {
			final.Stats.Failed++
			out.Status = "failed"
			out.Error = r.Outcome.Error.Error
			out.ErrorType = r.Outcome.Error.ErrorType
		} else {
			final.Stats.Successful++
			out.Status = "success"
			out.SidecarPath = r.Outcome.SidecarPath
		}
		final.Results = append(final.Results, out)
	}

	switch {
	case final.Stats.Failed == 0:
		final.Status = "success"
	case final.Stats.Successful == 0:
		final.Status = "failed"
	default:
		final.Status = "partial_failure"
	}

	var manifestErr error
	if writeManifest {
		now := time.Now()
		s := &storage.Storage{}
		m := manifest.Build(results, wordCounts, s, now)
		final.ManifestPath, manifestErr = manifest.Write(m, p.Options().OutputDir, now, s)
	}

	final.Stats.TotalTimeSeconds = time.Since(startTime).Seconds()
	return final, manifestErr
}

// Record stores the batch as one run in the history database.
func Record(history *db.DB, final *FinalOutput, format string) error {
	runID, err := history.CreateRun("generate", format, final.Stats.TotalFiles)
	if err != nil {
		return err
	}
	for _, r := range final.Results {
		if err := history.RecordResult(runID, common.HistoryResult(r.Filename, r.outcome)); err != nil {
			return err
		}
	}
	return nil
}

// finish prints the summary and maps the batch result to an exit code:
// 1 when some files failed, 2 when all did.
func finish(final *FinalOutput, format string) error {
	var outputData []byte
	var marshalErr error
	if format == "yaml" {
		outputData, marshalErr = yaml.Marshal(final)
	} else {
		outputData, marshalErr = json.MarshalIndent(final, "", "  ")
	}
	if marshalErr != nil {
		return cli.Exit(fmt.Sprintf("failed to marshal output: %v", marshalErr), 2)
	}
	fmt.Println(string(outputData))

	if final.Stats.Failed == final.Stats.TotalFiles {
		return cli.Exit("", 2)
	}
	if final.Stats.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

package generate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/docmeta/pkg/db"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
	"github.com/dtnitsch/docmeta/pkg/pipeline/pipelinetest"
	"github.com/urfave/cli/v2"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	good := filepath.Join(dir, "memo.txt")
	if err := os.WriteFile(good, []byte("Quarterly planning notes for the regional team.\nBudget review happens on Friday afternoon."), 0644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "archive.xyz")

	opts := pipeline.DefaultOptions()
	opts.OutputDir = outDir
	p := pipelinetest.New(t, opts)

	final, err := Process(context.Background(), discardLogger(), p, []string{good, bad}, 2, true)
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	if final.Status != "partial_failure" {
		t.Errorf("Status = %q, want partial_failure", final.Status)
	}
	if final.Stats.TotalFiles != 2 || final.Stats.Successful != 1 || final.Stats.Failed != 1 {
		t.Errorf("Stats = %+v, want 2 total / 1 ok / 1 failed", final.Stats)
	}
	// Results keep input order regardless of worker scheduling.
	if final.Results[0].Filename != good || final.Results[1].Filename != bad {
		t.Errorf("results out of order: %+v", final.Results)
	}
	if final.Results[0].SidecarPath != filepath.Join(outDir, "memo_meta.json") {
		t.Errorf("SidecarPath = %q", final.Results[0].SidecarPath)
	}
	if final.Results[1].ErrorType != "unsupported_format" {
		t.Errorf("ErrorType = %q, want unsupported_format", final.Results[1].ErrorType)
	}
	if len(final.Stats.TopKeywords) == 0 {
		t.Error("expected aggregate keywords")
	}
	if final.ManifestPath == "" || !strings.HasPrefix(filepath.Base(final.ManifestPath), "docmeta-manifest-") {
		t.Errorf("ManifestPath = %q", final.ManifestPath)
	}
	if _, err := os.Stat(final.ManifestPath); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestFinish_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		stats    Stats
		wantCode int
	}{
		{"all ok", Stats{TotalFiles: 2, Successful: 2}, 0},
		{"some failed", Stats{TotalFiles: 2, Successful: 1, Failed: 1}, 1},
		{"all failed", Stats{TotalFiles: 2, Failed: 2}, 2},
	}

	// finish prints to stdout; silence it for the test run.
	stdout := os.Stdout
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer devNull.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Stdout = devNull
			err := finish(&FinalOutput{Stats: tt.stats}, "json")
			os.Stdout = stdout

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("finish() = %v, want nil", err)
				}
				return
			}
			var exit cli.ExitCoder
			if !errors.As(err, &exit) {
				t.Fatalf("finish() = %v, want exit coder", err)
			}
			if exit.ExitCode() != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exit.ExitCode(), tt.wantCode)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "memo.txt")
	if err := os.WriteFile(good, []byte("Quarterly planning notes for the regional team.\nBudget review happens on Friday afternoon."), 0644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "missing.txt")

	p := pipelinetest.New(t, pipeline.DefaultOptions())
	final, err := Process(context.Background(), discardLogger(), p, []string{good, bad}, 1, false)
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	history, err := db.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("db.Open() failed: %v", err)
	}
	defer history.Close()

	if err := Record(history, final, "json"); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	runs, err := history.ListRuns(1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns() = %v, %v", runs, err)
	}
	if runs[0].Command != "generate" || runs[0].SuccessCount != 1 || runs[0].FailedCount != 1 {
		t.Errorf("run = %+v", runs[0])
	}

	results, err := history.GetRunResults(runs[0].RunID)
	if err != nil {
		t.Fatalf("GetRunResults() failed: %v", err)
	}
	if len(results) != 2 || results[0].Path != good || results[1].ErrorType != "io_failure" {
		t.Errorf("results = %+v", results)
	}

	doc, err := history.GetDocument(good)
	if err != nil {
		t.Fatalf("GetDocument() failed: %v", err)
	}
	if doc.WordCount == 0 || doc.ExtractionMethod != "text" {
		t.Errorf("document = %+v", doc)
	}
}

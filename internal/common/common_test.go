package common

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/docmeta/models"
	"github.com/urfave/cli/v2"
)

// runWithFlags invokes fn inside a cli action so flags are parsed the way
// the real commands see them.
func runWithFlags(t *testing.T, args []string, fn func(c *cli.Context) error) {
	t.Helper()
	app := &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
			&cli.BoolFlag{Name: "quiet"},
			&cli.StringFlag{Name: "format"},
			&cli.StringFlag{Name: "output-dir"},
		},
		Action: fn,
	}
	if err := app.Run(append([]string{"test"}, args...)); err != nil {
		t.Fatalf("app.Run() failed: %v", err)
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	t.Chdir(t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "docmeta.yaml")
	if err := os.WriteFile(cfgPath, []byte("output:\n  format: yaml\n  dir: from-file\nkeywords:\n  count: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var cfg *models.Config
	runWithFlags(t, []string{"--config", cfgPath, "--format", "text"}, func(c *cli.Context) error {
		var err error
		cfg, err = LoadConfig(c)
		return err
	})

	if cfg.Output.Format != "text" {
		t.Errorf("Format = %q, want flag value text", cfg.Output.Format)
	}
	if cfg.Output.Dir != "from-file" {
		t.Errorf("Dir = %q, want file value", cfg.Output.Dir)
	}

	opts := PipelineOptions(cfg)
	if opts.KeywordCount != 5 || opts.Format != "text" || opts.OutputDir != "from-file" {
		t.Errorf("PipelineOptions() = %+v", opts)
	}
	if opts.SummarySentences != 3 || opts.EntityWindow != 1000 || opts.MaxSectionChars != 200 {
		t.Errorf("PipelineOptions() defaults = %+v", opts)
	}
}

func TestLoadConfig_InvalidFormatFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	var loadErr error
	runWithFlags(t, []string{"--format", "xml"}, func(c *cli.Context) error {
		_, loadErr = LoadConfig(c)
		return nil
	})
	if loadErr == nil {
		t.Error("expected validation error for format xml")
	}
}

func TestNewLogger_Quiet(t *testing.T) {
	runWithFlags(t, []string{"--quiet"}, func(c *cli.Context) error {
		logger := NewLogger(c)
		if logger.Enabled(context.Background(), slog.LevelInfo) {
			t.Error("quiet logger should drop info records")
		}
		if !logger.Enabled(context.Background(), slog.LevelError) {
			t.Error("quiet logger should keep errors")
		}
		return nil
	})
}

func TestBuildPipeline_Lexical(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Embedder.Backend = "lexical"
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	OCRBackend = nil
	t.Cleanup(func() { OCRBackend = nil })

	p, closeFn, err := BuildPipeline(cfg, logger)
	if err != nil {
		t.Fatalf("BuildPipeline() failed: %v", err)
	}
	closeFn()
	if p.Options().KeywordCount != 15 {
		t.Errorf("KeywordCount = %d, want 15", p.Options().KeywordCount)
	}

	cfg.Embedder.Backend = "bogus"
	if _, _, err := BuildPipeline(cfg, logger); err == nil {
		t.Error("expected error for unknown embedder backend")
	}
}

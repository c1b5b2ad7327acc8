// Package common holds the setup shared by every CLI action: logging,
// configuration and construction of the pipeline services.
package common

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/db"
	"github.com/dtnitsch/docmeta/pkg/embedder"
	"github.com/dtnitsch/docmeta/pkg/entities"
	"github.com/dtnitsch/docmeta/pkg/extractor"
	"github.com/dtnitsch/docmeta/pkg/language"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
	"github.com/dtnitsch/docmeta/pkg/segmenter"
	"github.com/urfave/cli/v2"
)

// NewLogger returns the JSON stderr logger; --quiet keeps only errors.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config and applies the output flags shared by the
// commands that write sidecars.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("output-dir") {
		cfg.Output.Dir = c.String("output-dir")
	}
	if c.IsSet("history-db") {
		cfg.History.Path = c.String("history-db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PipelineOptions maps configuration onto pipeline options.
func PipelineOptions(cfg *models.Config) pipeline.Options {
	return pipeline.Options{
		SummarySentences: cfg.Summary.Sentences,
		KeywordCount:     cfg.Keywords.Count,
		EntityWindow:     cfg.Entities.WindowChars,
		MaxSectionChars:  cfg.Summary.MaxSectionChars,
		Format:           cfg.Output.Format,
		OutputDir:        cfg.Output.Dir,
	}
}

// OCRBackend builds the scanned-PDF stage and its release function. The
// binary registers the Tesseract/MuPDF backend; when nil, scanned PDFs fail
// with a model error.
var OCRBackend func(cfg models.OCRConfig, logger *slog.Logger) (extractor.Stage, func() error, error)

// BuildServices constructs the model backends once for the process. The
// returned close function releases the OCR engine.
func BuildServices(cfg *models.Config, logger *slog.Logger) (pipeline.Services, func(), error) {
	emb, err := embedder.New(cfg.Embedder)
	if err != nil {
		return pipeline.Services{}, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	seg, err := segmenter.New(cfg.Summary.MinSentenceChars)
	if err != nil {
		return pipeline.Services{}, nil, err
	}

	var ocrStage extractor.Stage
	closeFn := func() {}
	if OCRBackend != nil {
		stage, release, err := OCRBackend(cfg.OCR, logger)
		if err != nil {
			return pipeline.Services{}, nil, fmt.Errorf("failed to create ocr engine: %w", err)
		}
		ocrStage = stage
		closeFn = func() {
			if err := release(); err != nil {
				logger.Warn("Failed to close ocr engine", "error", err)
			}
		}
	} else {
		logger.Warn("No OCR backend registered; scanned PDFs will fail")
	}

	ext := extractor.New(extractor.Options{
		OCR:             ocrStage,
		MinPDFTextChars: cfg.OCR.MinTextChars,
		Logger:          logger,
	})

	logger.Info("Services ready", "embedder", emb.Model(), "dimensions", emb.Dimensions(), "ocr_language", cfg.OCR.Language)

	return pipeline.Services{
		Extractor: ext,
		Segmenter: seg,
		Embedder:  emb,
		Entities:  entities.NewProseRecognizer(),
		Language:  language.New(),
	}, closeFn, nil
}

// BuildPipeline loads the services and wraps them in a pipeline.
func BuildPipeline(cfg *models.Config, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	services, closeFn, err := BuildServices(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(services, PipelineOptions(cfg), logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return p, closeFn, nil
}

// OpenHistory opens the run history database, or returns nil when history
// is disabled.
func OpenHistory(cfg *models.Config) (*db.DB, error) {
	if cfg.History.Path == "" {
		return nil, nil
	}
	database, err := db.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return database, nil
}

// HistoryResult maps a pipeline outcome onto a history row.
func HistoryResult(path string, out pipeline.Outcome) db.Result {
	r := db.Result{Path: path, Duration: out.Duration}
	if out.Failed() {
		r.Status = "failed"
		r.ErrorType = out.Error.ErrorType
		r.ErrorMessage = out.Error.Error
		return r
	}
	r.Status = "success"
	r.SidecarPath = out.SidecarPath
	r.Language = out.Report.Language
	r.WordCount = out.Report.WordCount
	r.ExtractionMethod = out.Report.ExtractionMethod
	r.DominantEntity = out.Report.DominantEntityType
	r.Keywords = out.Report.Keywords
	return r
}

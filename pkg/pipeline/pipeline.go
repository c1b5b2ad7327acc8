// Package pipeline runs one document through extraction, summarization,
// entity and statistics stages and assembles the metadata report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/analytics"
	"github.com/dtnitsch/docmeta/pkg/embedder"
	"github.com/dtnitsch/docmeta/pkg/entities"
	"github.com/dtnitsch/docmeta/pkg/extractor"
	"github.com/dtnitsch/docmeta/pkg/ranker"
	"github.com/dtnitsch/docmeta/pkg/report"
	"github.com/dtnitsch/docmeta/pkg/storage"
)

type TextExtractor interface {
	Extract(ctx context.Context, doc models.Document) (extractor.Result, error)
}

type Segmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
}

type LanguageDetector interface {
	Detect(text string) (string, error)
}

// Services are the shared, read-only model backends. They are built once
// per process and may be used by concurrent Generate calls.
type Services struct {
	Extractor TextExtractor
	Segmenter Segmenter
	Embedder  embedder.Embedder
	Entities  entities.Recognizer
	Language  LanguageDetector
}

type Options struct {
	SummarySentences int
	// KeywordCount 0 disables the keyword stage.
	KeywordCount    int
	EntityWindow    int
	MaxSectionChars int
	Format          string
	// OutputDir empty writes sidecars next to the source file.
	OutputDir string
	// SkipSidecar leaves the report in memory only.
	SkipSidecar bool
	Now         func() time.Time
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		SummarySentences: ranker.DefaultSections,
		KeywordCount:     15,
		EntityWindow:     entities.DefaultWindow,
		MaxSectionChars:  report.DefaultMaxSectionChars,
		Format:           report.FormatJSON,
	}
}

// Outcome carries exactly one of Report or Error.
type Outcome struct {
	Report *models.MetadataReport
	Error  *models.ErrorReport
	// WordCounts are the stopword-filtered word frequencies of the document,
	// kept for batch keyword aggregation.
	WordCounts  map[string]int
	SidecarPath string
	Duration    time.Duration
}

func (o Outcome) Failed() bool {
	return o.Error != nil
}

type Pipeline struct {
	services Services
	opts     Options
	storage  *storage.Storage
	writer   *report.Writer
	logger   *slog.Logger
}

func New(services Services, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if services.Extractor == nil || services.Segmenter == nil || services.Embedder == nil ||
		services.Entities == nil || services.Language == nil {
		return nil, fmt.Errorf("failed to create pipeline: all services are required")
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SummarySentences <= 0 {
		opts.SummarySentences = ranker.DefaultSections
	}
	if opts.EntityWindow <= 0 {
		opts.EntityWindow = entities.DefaultWindow
	}
	if opts.MaxSectionChars <= 0 {
		opts.MaxSectionChars = report.DefaultMaxSectionChars
	}
	if opts.Format == "" {
		opts.Format = report.FormatJSON
	}

	store := &storage.Storage{}
	return &Pipeline{
		services: services,
		opts:     opts,
		storage:  store,
		writer: &report.Writer{
			Storage:         store,
			Format:          opts.Format,
			OutputDir:       opts.OutputDir,
			MaxSectionChars: opts.MaxSectionChars,
		},
		logger: logger,
	}, nil
}

// Options returns the effective options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Generate processes the file at path. It never returns an error: every
// failure becomes the Outcome's error payload.
func (p *Pipeline) Generate(ctx context.Context, path string) Outcome {
	start := time.Now()
	doc := models.NewDocument(path, nil)

	outcome := p.recoverGenerate(ctx, doc)
	outcome.Duration = time.Since(start)

	if outcome.Error != nil {
		p.logger.Error("Failed to process document", "file", path,
			"error_type", outcome.Error.ErrorType, "error", outcome.Error.Error)
	} else {
		p.logger.Info("Processed document", "file", path, "words", outcome.Report.WordCount,
			"method", outcome.Report.ExtractionMethod, "sidecar", outcome.SidecarPath,
			"duration_ms", outcome.Duration.Milliseconds())
	}
	return outcome
}

// recoverGenerate turns a panic in any stage into a model failure so one
// document cannot take down a batch or the watcher.
func (p *Pipeline) recoverGenerate(ctx context.Context, doc models.Document) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = failure(doc.Name, models.NewError(models.KindModel, "generate", fmt.Errorf("panic: %v", r)))
		}
	}()
	return p.generate(ctx, doc)
}

func (p *Pipeline) generate(ctx context.Context, doc models.Document) Outcome {
	// Unknown extensions are rejected before touching the file.
	if doc.Format == models.FormatUnknown {
		return failure(doc.Name, models.NewError(models.KindUnsupportedFormat, "extract text",
			fmt.Errorf("unsupported file type: %q", doc.Ext)))
	}

	content, err := p.storage.ReadFile(doc.Path)
	if err != nil {
		return failure(doc.Name, models.NewError(models.KindIO, "read document", err))
	}
	doc = models.NewDocument(doc.Path, content)

	r, counts, err := p.Analyze(ctx, doc)
	if err != nil {
		return failure(doc.Name, err)
	}

	outcome := Outcome{Report: r, WordCounts: counts}
	if p.opts.SkipSidecar {
		return outcome
	}

	sidecar, err := p.writer.Write(doc, r)
	if err != nil {
		// No partial result: a report that could not be stored is a failure.
		return failure(doc.Name, models.NewError(models.KindIO, "write sidecar", err))
	}
	outcome.SidecarPath = sidecar
	return outcome
}

// Analyze runs every stage over an already loaded document. Errors are
// classified *models.Error values.
func (p *Pipeline) Analyze(ctx context.Context, doc models.Document) (*models.MetadataReport, map[string]int, error) {
	extracted, err := p.services.Extractor.Extract(ctx, doc)
	if err != nil {
		return nil, nil, classify(err, models.KindModel, "extract text")
	}
	text := extracted.Text
	p.logger.Debug("Extracted text", "file", doc.Name, "method", extracted.Method, "chars", len(text))

	stats := analytics.Compute(text)

	lang, err := p.services.Language.Detect(text)
	if err != nil {
		return nil, nil, classify(err, models.KindLanguage, "detect language")
	}

	summary, err := p.summarize(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	window, partial := entities.Window(text, p.opts.EntityWindow)
	found, err := p.services.Entities.Recognize(ctx, window)
	if err != nil {
		return nil, nil, classify(err, models.KindModel, "recognize entities")
	}
	grouped := entities.Group(found)

	counts := analytics.WordFrequency(text)
	var keywords []string
	if p.opts.KeywordCount > 0 {
		keywords = analytics.Keywords(counts, p.opts.KeywordCount)
	}

	return &models.MetadataReport{
		Filename:           doc.Name,
		ExtractedOn:        models.Timestamp(p.opts.Now()),
		LengthChars:        stats.LengthChars,
		WordCount:          stats.WordCount,
		ReadingTimeMin:     stats.ReadingTimeMin,
		ParagraphCount:     stats.ParagraphCount,
		Language:           lang,
		DominantEntityType: entities.Dominant(grouped),
		ExtractionMethod:   extracted.Method,
		SummarySections:    summary,
		Keywords:           keywords,
		Entities:           grouped,
		EntitiesPartial:    partial,
	}, counts, nil
}

// summarize returns the top sentences by salience. No qualifying sentences
// means an empty summary and no embedder call.
func (p *Pipeline) summarize(ctx context.Context, text string) ([]string, error) {
	sentences, err := p.services.Segmenter.Segment(ctx, text)
	if err != nil {
		return nil, classify(err, models.KindModel, "segment sentences")
	}
	if len(sentences) == 0 {
		return []string{}, nil
	}

	vectors, err := p.services.Embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return nil, classify(err, models.KindModel, "embed sentences")
	}

	summary, err := ranker.Rank(sentences, vectors, p.opts.SummarySentences)
	if err != nil {
		return nil, classify(err, models.KindModel, "rank sentences")
	}
	return summary, nil
}

// classify keeps an existing kind or assigns fallback.
func classify(err error, fallback models.ErrorKind, op string) error {
	if kind := models.KindOf(err, ""); kind != "" {
		return err
	}
	return models.NewError(fallback, op, err)
}

func failure(filename string, err error) Outcome {
	return Outcome{Error: &models.ErrorReport{
		Filename:  filename,
		Error:     err.Error(),
		ErrorType: string(models.KindOf(err, models.KindModel)),
	}}
}

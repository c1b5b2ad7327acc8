package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dtnitsch/docmeta/pkg/mapreduce"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
	"github.com/dtnitsch/docmeta/pkg/storage"
)

const keywordsPerFile = 10

// FileResult pairs an input path with its pipeline outcome.
type FileResult struct {
	Path    string
	Outcome pipeline.Outcome
}

// Build assembles the manifest for a batch. aggregate holds the reduced word
// counts of the whole batch.
func Build(results []FileResult, aggregate map[string]int, s *storage.Storage, now time.Time) BatchManifest {
	m := BatchManifest{
		GeneratedAt:       now.UTC().Format(time.RFC3339),
		TotalFiles:        len(results),
		AggregateKeywords: mapreduce.TopKeywords(aggregate, 25),
		Results:           make([]FileSummary, 0, len(results)),
	}

	for _, result := range results {
		out := result.Outcome
		summary := FileSummary{
			Filename:   filepath.Base(result.Path),
			DurationMs: out.Duration.Milliseconds(),
		}

		if out.Error != nil {
			m.Failed++
			summary.Status = "error"
			summary.ErrorType = out.Error.ErrorType
			summary.ErrorMessage = out.Error.Error
		} else {
			m.Successful++
			summary.Status = "success"
			summary.SidecarPath = out.SidecarPath
			summary.WordCount = out.Report.WordCount
			summary.Language = out.Report.Language
			summary.ExtractionMethod = out.Report.ExtractionMethod
			if stats, err := s.GetFileStats(result.Path); err == nil {
				summary.SizeBytes = stats.SizeBytes
			}
			if out.WordCounts != nil {
				summary.TopKeywords = mapreduce.TopKeywords(out.WordCounts, keywordsPerFile)
			}
		}

		m.Results = append(m.Results, summary)
	}

	return m
}

// FileName is the manifest file name for a run on the given day.
func FileName(now time.Time) string {
	return fmt.Sprintf("docmeta-manifest-%s.json", now.Format("2006-01-02"))
}

// Write saves m as indented JSON in dir and returns its path.
func Write(m BatchManifest, dir string, now time.Time, s *storage.Storage) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName(now))

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}
	if err := s.SaveFile(path, data); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}
	return path, nil
}

package generate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dtnitsch/docmeta/pkg/manifest"
	"github.com/dtnitsch/docmeta/pkg/mapreduce"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
)

type job struct {
	index int
	path  string
}

// worker runs whole documents; each document stays on one goroutine.
func worker(ctx context.Context, id int, logger *slog.Logger, p *pipeline.Pipeline, wg *sync.WaitGroup, jobs <-chan job, results []manifest.FileResult) {
	defer wg.Done()
	for j := range jobs {
		logger.Debug("Worker started file", "worker_id", id, "file", j.path)
		results[j.index] = manifest.FileResult{Path: j.path, Outcome: p.Generate(ctx, j.path)}
	}
}

// run processes paths with the given number of workers. Results keep the
// input order; the word counts of successful files are reduced into one map.
func run(ctx context.Context, logger *slog.Logger, p *pipeline.Pipeline, paths []string, workers int) ([]manifest.FileResult, map[string]int) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	logger.Info("Starting generate phase", "file_count", len(paths), "workers", workers)
	results := make([]manifest.FileResult, len(paths))
	jobs := make(chan job, len(paths))

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go worker(ctx, w, logger, p, &wg, jobs, results)
	}
	for i, path := range paths {
		jobs <- job{index: i, path: path}
	}
	close(jobs)
	wg.Wait()
	logger.Info("All generate workers finished")

	intermediate := make([]map[string]int, 0, len(results))
	for _, r := range results {
		if r.Outcome.WordCounts != nil {
			intermediate = append(intermediate, r.Outcome.WordCounts)
		}
	}
	return results, mapreduce.Reduce(intermediate)
}

package watch

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dtnitsch/docmeta/internal/common"
	"github.com/dtnitsch/docmeta/pkg/db"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
	"github.com/urfave/cli/v2"
)

func WatchAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	dir := c.String("dir")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %q is not a directory\n", dir)
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
	var recorder *historyRecorder
	if history != nil {
		defer history.Close()
		runID, err := history.CreateRun("watch", cfg.Output.Format, 0)
		if err != nil {
			logger.Error("failed to record watch run", "error", err)
			return cli.Exit("", 2)
		}
		recorder = &historyRecorder{db: history, runID: runID}
	}

	w, err := New(p, dir, Options{
		Settle:   c.Duration("settle"),
		Existing: c.Bool("existing"),
		OnResult: func(path string, out pipeline.Outcome) {
			if recorder != nil {
				if err := recorder.record(path, out); err != nil {
					logger.Error("failed to record history", "file", path, "error", err)
				}
			}
			if out.Failed() {
				fmt.Printf("failed  %s: %s\n", path, out.Error.Error)
				return
			}
			fmt.Printf("done    %s -> %s\n", path, out.SidecarPath)
		},
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return cli.Exit("", 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Watching directory", "dir", dir)
	return w.Run(ctx)
}

// historyRecorder appends watch results to a single history run.
type historyRecorder struct {
	mu    sync.Mutex
	db    *db.DB
	runID int64
	count int
}

func (r *historyRecorder) record(path string, out pipeline.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.db.RecordResult(r.runID, common.HistoryResult(path, out)); err != nil {
		return err
	}
	r.count++
	return r.db.SetFileCount(r.runID, r.count)
}

package serve

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dtnitsch/docmeta/internal/common"
	"github.com/dtnitsch/docmeta/pkg/report"
	"github.com/urfave/cli/v2"
)

func ServeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit("", 2)
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("upload-dir") {
		cfg.Server.UploadDir = c.String("upload-dir")
	}
	// Sidecars live in each upload's own directory.
	cfg.Output.Dir = ""
	cfg.Output.Format = report.FormatJSON

	p, closeFn, err := common.BuildPipeline(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		return cli.Exit("", 2)
	}
	defer closeFn()

	srv, err := NewServer(p, cfg.Server, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return cli.Exit("", 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     srv.Handler(),
		ReadTimeout: 30 * time.Second,
		// OCR of a long scan can take minutes.
		WriteTimeout: 10 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down server", "error", err)
		}
	}()

	logger.Info("Server starting", "addr", cfg.Server.Addr, "upload_dir", cfg.Server.UploadDir)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		return cli.Exit("", 1)
	}
	logger.Info("Server stopped")
	return nil
}

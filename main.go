package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/docmeta/internal/common"
	"github.com/dtnitsch/docmeta/internal/generate"
	"github.com/dtnitsch/docmeta/internal/history"
	"github.com/dtnitsch/docmeta/internal/serve"
	"github.com/dtnitsch/docmeta/internal/watch"
	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/extractor"
	"github.com/dtnitsch/docmeta/pkg/help"
	"github.com/dtnitsch/docmeta/pkg/ocr"
	"github.com/dtnitsch/docmeta/pkg/ocr/mupdf"
	"github.com/dtnitsch/docmeta/pkg/ocr/tesseract"
	"github.com/urfave/cli/v2"
)

// tesseractBackend renders pages with MuPDF and reads them with Tesseract.
func tesseractBackend(cfg models.OCRConfig, logger *slog.Logger) (extractor.Stage, func() error, error) {
	recognizer, err := tesseract.New(cfg.Language)
	if err != nil {
		return nil, nil, err
	}
	return ocr.NewStage(mupdf.New(), recognizer, cfg.Scale, logger), recognizer.Close, nil
}

func main() {
	common.OCRBackend = tesseractBackend

	outputFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Sidecar format: json, yaml or text",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Write sidecars here instead of next to each source file",
		},
	}

	app := &cli.App{
		Name:  "docmeta",
		Usage: "Extract summaries, entities and statistics from documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "docmeta.yaml",
				Usage: "YAML configuration file (optional)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.StringFlag{
				Name:  "history-db",
				Usage: "Record runs in this SQLite database (overrides history.path)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Generate metadata sidecars for the given files",
				ArgsUsage: "FILE...",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "manifest",
						Usage: "Also write docmeta-manifest-<date>.json for the batch",
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: 1,
						Usage: "Number of files processed concurrently",
					},
				}, outputFlags...),
				Action: generate.GenerateAction,
			},
			{
				Name:  "serve",
				Usage: "Run the upload web front end",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (default from config, :8080)",
					},
					&cli.StringFlag{
						Name:  "upload-dir",
						Usage: "Directory for uploads and their sidecars",
					},
				},
				Action: serve.ServeAction,
			},
			{
				Name:  "watch",
				Usage: "Process documents dropped into a directory",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Directory to watch",
					},
					&cli.DurationFlag{
						Name:  "settle",
						Value: watch.DefaultSettle,
						Usage: "Quiet period before a changed file is processed",
					},
					&cli.BoolFlag{
						Name:  "existing",
						Usage: "Also process documents already in the directory",
					},
				}, outputFlags...),
				Action: watch.WatchAction,
			},
			{
				Name:  "history",
				Usage: "Inspect recorded runs",
				Subcommands: []*cli.Command{
					{
						Name:  "runs",
						Usage: "List recent runs",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Value: 20,
								Usage: "Maximum runs to show (0 for all)",
							},
						},
						Action: history.RunsAction,
					},
					{
						Name:      "run",
						Usage:     "Show the results of one run",
						ArgsUsage: "[ID]",
						Action:    history.RunAction,
					},
					{
						Name:      "doc",
						Usage:     "Show the last recorded report summary for a document",
						ArgsUsage: "PATH",
						Action:    history.DocumentAction,
					},
				},
			},
			{
				Name:  "quickstart",
				Usage: "Print a quick reference",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

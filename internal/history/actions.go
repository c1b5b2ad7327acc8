package history

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/docmeta/internal/common"
	"github.com/dtnitsch/docmeta/pkg/db"
	"github.com/urfave/cli/v2"
)

func openHistory(c *cli.Context) (*db.DB, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	database, err := common.OpenHistory(cfg)
	if err != nil {
		return nil, err
	}
	if database == nil {
		return nil, fmt.Errorf("history is disabled. Pass --history-db or set history.path in the config")
	}
	return database, nil
}

func RunsAction(c *cli.Context) error {
	database, err := openHistory(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.App.Writer, "No runs found")
		return nil
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%-6s %-20s %-10s %-8s %-8s %-8s %-8s\n",
		"ID", "Created", "Command", "Format", "Files", "Success", "Failed")
	fmt.Fprintln(w, strings.Repeat("-", 76))
	for _, r := range runs {
		fmt.Fprintf(w, "%-6d %-20s %-10s %-8s %-8d %-8d %-8d\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Command,
			r.Format,
			r.FileCount,
			r.SuccessCount,
			r.FailedCount,
		)
	}
	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'docmeta history run <id>' to see details\n")
	return nil
}

// RunAction shows the per-document results of one run, the latest when no
// id is given.
func RunAction(c *cli.Context) error {
	database, err := openHistory(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := runIDOrLatest(c, database)
	if err != nil {
		return err
	}
	run, err := database.GetRunByID(runID)
	if err != nil {
		return err
	}
	results, err := database.GetRunResults(runID)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Run %d (%s, %s)\n", run.RunID, run.Command, run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Files: %d  Success: %d  Failed: %d\n\n", run.FileCount, run.SuccessCount, run.FailedCount)
	for _, r := range results {
		if r.Status == "success" {
			fmt.Fprintf(w, "  ok      %s -> %s (%dms)\n", r.Path, r.SidecarPath, r.DurationMs)
			continue
		}
		fmt.Fprintf(w, "  failed  %s [%s] %s\n", r.Path, r.ErrorType, r.ErrorMessage)
	}
	return nil
}

// DocumentAction prints the last successful report summary for a path.
func DocumentAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a document path is required")
	}
	database, err := openHistory(c)
	if err != nil {
		return err
	}
	defer database.Close()

	doc, err := database.GetDocument(c.Args().First())
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Path: %s\n", doc.Path)
	if doc.Language == "" {
		fmt.Fprintln(w, "No successful report recorded")
		return nil
	}
	fmt.Fprintf(w, "Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Language: %s\n", doc.Language)
	fmt.Fprintf(w, "Words: %d\n", doc.WordCount)
	fmt.Fprintf(w, "Extraction: %s\n", doc.ExtractionMethod)
	fmt.Fprintf(w, "Dominant entity type: %s\n", doc.DominantEntity)
	if len(doc.Keywords) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n", strings.Join(doc.Keywords, ", "))
	}
	return nil
}

func runIDOrLatest(c *cli.Context, database *db.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs found. Run 'docmeta --history-db <path> generate ...' first")
		}
		return runs[0].RunID, nil
	}

	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}

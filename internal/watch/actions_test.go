package watch

import (
	"path/filepath"
	"testing"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/db"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
)

func TestHistoryRecorder(t *testing.T) {
	history, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("db.Open() failed: %v", err)
	}
	defer history.Close()

	runID, err := history.CreateRun("watch", "json", 0)
	if err != nil {
		t.Fatal(err)
	}
	r := &historyRecorder{db: history, runID: runID}

	ok := pipeline.Outcome{
		Report:      &models.MetadataReport{Filename: "a.txt", Language: "en", WordCount: 9},
		SidecarPath: "a_meta.json",
	}
	failed := pipeline.Outcome{
		Error: &models.ErrorReport{Filename: "b.txt", Error: "invalid utf-8", ErrorType: "decode_error"},
	}
	if err := r.record("inbox/a.txt", ok); err != nil {
		t.Fatalf("record() failed: %v", err)
	}
	if err := r.record("inbox/b.txt", failed); err != nil {
		t.Fatalf("record() failed: %v", err)
	}

	run, err := history.GetRunByID(runID)
	if err != nil {
		t.Fatal(err)
	}
	if run.FileCount != 2 || run.SuccessCount != 1 || run.FailedCount != 1 {
		t.Errorf("run = %+v, want 2 files / 1 ok / 1 failed", run)
	}
}

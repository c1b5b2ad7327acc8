package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Run is one generate batch or watch session.
type Run struct {
	RunID        int64
	CreatedAt    time.Time
	Command      string
	Format       string
	FileCount    int
	SuccessCount int
	FailedCount  int
}

// Result is one document outcome to record. Report fields are empty for
// failed documents.
type Result struct {
	Path             string
	Status           string
	ErrorType        string
	ErrorMessage     string
	SidecarPath      string
	Duration         time.Duration
	Language         string
	WordCount        int
	ExtractionMethod string
	DominantEntity   string
	Keywords         []string
}

// RunResult is a recorded outcome joined with its document path.
type RunResult struct {
	Path         string
	Status       string
	ErrorType    string
	ErrorMessage string
	SidecarPath  string
	DurationMs   int64
}

// Document is the latest successful report summary for one path.
type Document struct {
	DocumentID       int64
	Path             string
	Language         string
	WordCount        int
	ExtractionMethod string
	DominantEntity   string
	Keywords         []string
	UpdatedAt        time.Time
}

// CreateRun inserts a new run and returns its id.
func (db *DB) CreateRun(command, format string, fileCount int) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (command, format, file_count)
		VALUES (?, ?, ?)
	`, command, format, fileCount)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// RecordResult stores one outcome under runID and bumps the run counters.
// Successful outcomes also refresh the document row.
func (db *DB) RecordResult(runID int64, r Result) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	documentID, err := upsertDocument(tx, r)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO run_results (run_id, document_id, status, error_type, error_message, sidecar_path, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, documentID, r.Status, nullString(r.ErrorType), nullString(r.ErrorMessage),
		nullString(r.SidecarPath), r.Duration.Milliseconds()); err != nil {
		return fmt.Errorf("failed to insert run result: %w", err)
	}

	counter := "success_count"
	if r.Status != "success" {
		counter = "failed_count"
	}
	if _, err := tx.Exec(fmt.Sprintf(`UPDATE runs SET %s = %s + 1 WHERE run_id = ?`, counter, counter), runID); err != nil {
		return fmt.Errorf("failed to update run stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	return nil
}

// SetFileCount updates the number of files a run covers. Watch sessions
// grow as documents arrive.
func (db *DB) SetFileCount(runID int64, fileCount int) error {
	if _, err := db.Exec(`UPDATE runs SET file_count = ? WHERE run_id = ?`, fileCount, runID); err != nil {
		return fmt.Errorf("failed to update run file count: %w", err)
	}
	return nil
}

func upsertDocument(tx *sql.Tx, r Result) (int64, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(r.Path)), ".")

	var documentID int64
	err := tx.QueryRow("SELECT document_id FROM documents WHERE path = ?", r.Path).Scan(&documentID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, err := tx.Exec(`INSERT INTO documents (path, extension) VALUES (?, ?)`, r.Path, ext)
		if err != nil {
			return 0, fmt.Errorf("failed to insert document: %w", err)
		}
		documentID, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get document ID: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("failed to check existing document: %w", err)
	}

	if r.Status != "success" {
		return documentID, nil
	}

	keywordsJSON, err := json.Marshal(r.Keywords)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal keywords: %w", err)
	}
	if _, err := tx.Exec(`
		UPDATE documents
		SET language = ?, word_count = ?, extraction_method = ?, dominant_entity_type = ?,
		    keywords = ?, updated_at = CURRENT_TIMESTAMP
		WHERE document_id = ?
	`, r.Language, r.WordCount, r.ExtractionMethod, r.DominantEntity, string(keywordsJSON), documentID); err != nil {
		return 0, fmt.Errorf("failed to update document: %w", err)
	}
	return documentID, nil
}

// GetRunByID retrieves a run by its ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	var run Run
	var format sql.NullString
	err := db.QueryRow(`
		SELECT run_id, created_at, command, format, file_count, success_count, failed_count
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&run.RunID, &run.CreatedAt, &run.Command, &format,
		&run.FileCount, &run.SuccessCount, &run.FailedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.Format = format.String
	return &run, nil
}

// ListRuns returns runs newest first; limit <= 0 returns all of them.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, created_at, command, format, file_count, success_count, failed_count
		FROM runs
		ORDER BY run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var format sql.NullString
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Command, &format,
			&r.FileCount, &r.SuccessCount, &r.FailedCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Format = format.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunResults retrieves all results for a run in the order recorded.
func (db *DB) GetRunResults(runID int64) ([]RunResult, error) {
	rows, err := db.Query(`
		SELECT d.path, rr.status, rr.error_type, rr.error_message, rr.sidecar_path, rr.duration_ms
		FROM run_results rr
		JOIN documents d ON rr.document_id = d.document_id
		WHERE rr.run_id = ?
		ORDER BY rr.result_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		var errorType, errorMessage, sidecarPath sql.NullString
		if err := rows.Scan(&r.Path, &r.Status, &errorType, &errorMessage, &sidecarPath, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.ErrorType = errorType.String
		r.ErrorMessage = errorMessage.String
		r.SidecarPath = sidecarPath.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetDocument returns the stored summary for path.
func (db *DB) GetDocument(path string) (*Document, error) {
	var d Document
	var language, method, dominant, keywords sql.NullString
	err := db.QueryRow(`
		SELECT document_id, path, language, word_count, extraction_method,
		       dominant_entity_type, keywords, updated_at
		FROM documents
		WHERE path = ?
	`, path).Scan(&d.DocumentID, &d.Path, &language, &d.WordCount, &method,
		&dominant, &keywords, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	d.Language = language.String
	d.ExtractionMethod = method.String
	d.DominantEntity = dominant.String
	if keywords.Valid && keywords.String != "" && keywords.String != "null" {
		if err := json.Unmarshal([]byte(keywords.String), &d.Keywords); err != nil {
			return nil, fmt.Errorf("failed to parse keywords: %w", err)
		}
	}
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Package serve implements the upload web front end.
package serve

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
	"github.com/dtnitsch/docmeta/pkg/report"
	"github.com/dtnitsch/docmeta/pkg/storage"
	"github.com/google/uuid"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	pipeline  *pipeline.Pipeline
	storage   *storage.Storage
	uploadDir string
	maxUpload int64
	templates *template.Template
	logger    *slog.Logger
}

// NewServer expects p to write JSON sidecars next to the source file.
func NewServer(p *pipeline.Pipeline, cfg models.ServerConfig, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &Server{
		pipeline:  p,
		storage:   &storage.Storage{},
		uploadDir: cfg.UploadDir,
		maxUpload: maxUpload,
		templates: tmpl,
		logger:    logger,
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /download/{id}/{name}", s.handleDownload)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return s.loggingMiddleware(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	exts := models.SupportedExtensions()
	accept := make([]string, len(exts))
	for i, ext := range exts {
		accept[i] = "." + ext
	}
	s.render(w, "index", map[string]string{"Accept": strings.Join(accept, ",")})
}

type resultView struct {
	Filename string
	Failed   bool
	Text     string
	JSON     string
	JSONURL  string
	TextURL  string
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "A file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	path := filepath.Join(s.uploadDir, id, name)
	if err := s.storage.SaveFile(path, content); err != nil {
		s.logger.Error("Failed to store upload", "file", name, "error", err)
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	s.logger.Info("Upload stored", "id", id, "file", name, "bytes", len(content))

	out := s.pipeline.Generate(r.Context(), path)
	view := resultView{Filename: name}
	if out.Failed() {
		view.Failed = true
		view.Text = report.FormatErrorText(out.Error)
		view.JSON = mustIndent(out.Error)
		s.render(w, "result", view)
		return
	}

	doc := models.NewDocument(path, nil)
	textWriter := &report.Writer{Storage: s.storage, Format: report.FormatText, MaxSectionChars: s.pipeline.Options().MaxSectionChars}
	if _, err := textWriter.Write(doc, out.Report); err != nil {
		s.logger.Error("Failed to write text report", "file", name, "error", err)
	}

	view.Text = report.RenderText(out.Report, s.pipeline.Options().MaxSectionChars)
	view.JSON = mustIndent(out.Report)
	view.JSONURL = fmt.Sprintf("/download/%s/%s", id, report.SidecarName(doc.Stem, report.FormatJSON))
	view.TextURL = fmt.Sprintf("/download/%s/%s", id, report.SidecarName(doc.Stem, report.FormatText))
	s.render(w, "result", view)
}

// handleDownload serves sidecars only, never the uploaded source.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name := r.PathValue("name")
	if _, err := uuid.Parse(id); err != nil {
		http.NotFound(w, r)
		return
	}
	if filepath.Base(name) != name || !(strings.HasSuffix(name, "_meta.json") || strings.HasSuffix(name, "_metadata.txt")) {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.uploadDir, id, name)
	if !s.storage.HasFile(path) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Failed to render template", "template", name, "error", err)
	}
}

func mustIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("Request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration_ms", time.Since(start).Milliseconds())
	})
}

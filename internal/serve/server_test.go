package serve

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/dtnitsch/docmeta/models"
	"github.com/dtnitsch/docmeta/pkg/pipeline"
	"github.com/dtnitsch/docmeta/pkg/pipeline/pipelinetest"
)

func newTestServer(t *testing.T, maxUpload int64) (*httptest.Server, string) {
	t.Helper()
	uploadDir := t.TempDir()
	p := pipelinetest.New(t, pipeline.DefaultOptions())
	srv, err := NewServer(p, models.ServerConfig{UploadDir: uploadDir, MaxUploadBytes: maxUpload}, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, uploadDir
}

func upload(t *testing.T, url, filename string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	resp, err := http.Post(url+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

var downloadLink = regexp.MustCompile(`href="(/download/[^"]+)"`)

func TestUploadRoundTrip(t *testing.T) {
	ts, uploadDir := newTestServer(t, 0)

	content := []byte("Meeting notes from the Tuesday planning session.\nAlice presented the revised launch schedule.\n")
	resp := upload(t, ts.URL, "notes.txt", content)
	page := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, page)
	}
	if !strings.Contains(page, "Filename: notes.txt") {
		t.Errorf("result page missing text report:\n%s", page)
	}

	links := downloadLink.FindAllStringSubmatch(page, -1)
	if len(links) != 2 {
		t.Fatalf("found %d download links, want 2", len(links))
	}

	for _, link := range links {
		resp, err := http.Get(ts.URL + link[1])
		if err != nil {
			t.Fatalf("download failed: %v", err)
		}
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", link[1], resp.StatusCode)
		}
		switch {
		case strings.HasSuffix(link[1], "notes_meta.json"):
			var r models.MetadataReport
			if err := json.Unmarshal([]byte(body), &r); err != nil {
				t.Fatalf("invalid json sidecar: %v", err)
			}
			if r.Filename != "notes.txt" || r.ParagraphCount != 2 {
				t.Errorf("sidecar = %+v", r)
			}
		case strings.HasSuffix(link[1], "notes_metadata.txt"):
			if !strings.HasPrefix(body, "Filename: notes.txt\n") {
				t.Errorf("text sidecar = %q", body)
			}
		default:
			t.Errorf("unexpected link %s", link[1])
		}
	}

	// The upload itself is stored in a per-request directory.
	matches, _ := filepath.Glob(filepath.Join(uploadDir, "*", "notes.txt"))
	if len(matches) != 1 {
		t.Errorf("stored uploads = %v, want one", matches)
	}
}

func TestUploadUnsupported(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	resp := upload(t, ts.URL, "archive.xyz", []byte("binary"))
	page := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(page, "Error processing archive.xyz:") {
		t.Errorf("error payload not shown:\n%s", page)
	}
	if strings.Contains(page, "/download/") {
		t.Error("failed uploads must not offer downloads")
	}
}

func TestUploadRejected(t *testing.T) {
	ts, _ := newTestServer(t, 64)

	resp := upload(t, ts.URL, "big.txt", bytes.Repeat([]byte("a"), 4096))
	readBody(t, resp)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized upload status = %d, want 413", resp.StatusCode)
	}

	resp, err := http.Post(ts.URL+"/upload", "text/plain", strings.NewReader("no form"))
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing file status = %d, want 400", resp.StatusCode)
	}
}

func TestDownloadGuards(t *testing.T) {
	ts, uploadDir := newTestServer(t, 0)

	id := "3f1c2f0e-8d5b-4e63-9a0c-1f2e3d4c5b6a"
	if err := os.MkdirAll(filepath.Join(uploadDir, id), 0750); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(uploadDir, id, "secret.txt"), []byte("source"), 0644)

	tests := []struct {
		name string
		path string
	}{
		{"not a uuid", "/download/abc/notes_meta.json"},
		{"source file", "/download/" + id + "/secret.txt"},
		{"missing sidecar", "/download/" + id + "/gone_meta.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			readBody(t, resp)
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("status = %d, want 404", resp.StatusCode)
			}
		})
	}
}

func TestIndexAndHealth(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	page := readBody(t, resp)
	if !strings.Contains(page, `name="file"`) || !strings.Contains(page, ".docx") {
		t.Errorf("index page missing upload form:\n%s", page)
	}

	resp, err = http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("health = %q", body)
	}

	resp, err = http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", resp.StatusCode)
	}
}

package watch

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
)

func TestHandleGenerateSuccess(t *testing.T) {
	file := tempDiagram(t, "graph TD\n  A[Start] --> B[End]")
	wa := newTestWatcher(t, file)

	req := httptest.NewRequest(http.MethodGet, "/graph.svg", nil)
	rec := httptest.NewRecorder()

	wa.handleGenerate(rec, req)

	assert.EqualValues(t, rec.Code, http.StatusOK, "status code")
	assert.EqualValues(t, rec.Header().Get("Content-Type"), "image/svg+xml", "Content-Type")
	assert.True(t, strings.Contains(rec.Body.String(), "<svg"), "body should contain <svg")
	assert.True(t, strings.Contains(rec.Body.String(), ">Start</text>"), "body should contain the node label")
}

func TestHandleGenerateFatalParseError(t *testing.T) {
	file := tempDiagram(t, "graph TD\nsubgraph S\nsubgraph S\nend\nend")
	wa := newTestWatcher(t, file)

	req := httptest.NewRequest(http.MethodGet, "/graph.svg", nil)
	rec := httptest.NewRecorder()

	wa.handleGenerate(rec, req)

	assert.EqualValues(t, rec.Code, http.StatusInternalServerError, "status code")
	assert.True(t, strings.Contains(rec.Body.String(), "ParseError"), "body should carry the error kind")
}

func TestNewRejectsMissingFile(t *testing.T) {
	_, err := New(Config{
		File:   filepath.Join(t.TempDir(), "missing.mmd"),
		Port:   "0",
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
	assert.True(t, err != nil, "missing file should fail")
}

func tempDiagram(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mmd")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func newTestWatcher(t *testing.T, file string) *Watcher {
	t.Helper()
	wa, err := New(Config{
		File:   file,
		Port:   "0",
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	return wa
}

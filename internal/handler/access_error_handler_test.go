package handler

import (
	"bufio"
	"bytes"
	"encoding/json"
	"html"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"access-error-service/internal/render"
	"access-error-service/internal/sink"
	"access-error-service/internal/usecase"
	"access-error-service/pkg/correlation"
)

var (
	testSite       = render.Site{AppName: "My Protected Application", ContactEmail: "admin@example.cz"}
	pageIDPattern  = regexp.MustCompile(`<code id="correlation-id">([^<]+)</code>`)
	logHeaderRegex = regexp.MustCompile(`(?m)^(\S+) \[([^\]]+)\] Access Error:$`)
)

func setupRouter(t *testing.T, logFile string) http.Handler {
	t.Helper()
	service := usecase.NewReportService(nil, sink.NewFileSink(logFile))
	h := NewAccessErrorHandler(service, testSite, http.StatusForbidden)
	return NewRouter(h, "/access-error", nil)
}

func pageCorrelationID(t *testing.T, body string) string {
	t.Helper()
	m := pageIDPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("correlation id not found in page")
	}
	return m[1]
}

func TestReportAccessError_Success(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "access-error.log")
	router := setupRouter(t, logFile)

	req := httptest.NewRequest(http.MethodGet, "http://example.org/access-error", nil)
	req.RemoteAddr = "10.0.0.1:40000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("want status 403, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("want text/html, got %q", ct)
	}

	body := rec.Body.String()
	pageID := pageCorrelationID(t, body)
	if got := rec.Header().Get(correlation.Header); got != pageID {
		t.Errorf("want header %s, got %s", pageID, got)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	m := logHeaderRegex.FindStringSubmatch(string(data))
	if m == nil {
		t.Fatalf("log header not found in %q", data)
	}
	if m[2] != pageID {
		t.Errorf("page id %s differs from logged id %s", pageID, m[2])
	}

	for _, line := range []string{"    [HTTP_HOST] --> [example.org]", "    [REMOTE_ADDR] --> [10.0.0.1]"} {
		if !strings.Contains(string(data), line) {
			t.Errorf("log file missing %q", line)
		}
		if !strings.Contains(html.UnescapeString(body), line) {
			t.Errorf("page missing %q", line)
		}
	}
}

func TestReportAccessError_SummaryLogMatchesRecord(t *testing.T) {
	var logBuf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logBuf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	logFile := filepath.Join(t.TempDir(), "access-error.log")
	router := setupRouter(t, logFile)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/access-error", nil))

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	m := logHeaderRegex.FindStringSubmatch(string(data))
	if m == nil {
		t.Fatalf("log header not found in %q", data)
	}

	var summary map[string]any
	scanner := bufio.NewScanner(&logBuf)
	for scanner.Scan() {
		var entry map[string]any
		if json.Unmarshal(scanner.Bytes(), &entry) == nil && entry["msg"] == "access error reported" {
			summary = entry
		}
	}
	if summary == nil {
		t.Fatal("summary log line not found")
	}
	if summary["timestamp"] != m[1] {
		t.Errorf("summary timestamp %v differs from record timestamp %s", summary["timestamp"], m[1])
	}
}

func TestReportAccessError_Post(t *testing.T) {
	router := setupRouter(t, filepath.Join(t.TempDir(), "access-error.log"))

	req := httptest.NewRequest(http.MethodPost, "/access-error", strings.NewReader("SAMLResponse=x"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("want status 403, got %d", rec.Code)
	}
}

func TestReportAccessError_UnwritableLog(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "missing", "access-error.log")
	router := setupRouter(t, logFile)

	req := httptest.NewRequest(http.MethodGet, "/access-error", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("want status 403, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasSuffix(strings.TrimSpace(body), "</html>") {
		t.Error("expected complete HTML document")
	}
	if id := pageCorrelationID(t, body); id == "" {
		t.Error("expected non-empty correlation id")
	}
	if _, err := os.Stat(logFile); !os.IsNotExist(err) {
		t.Errorf("log file should not exist, stat err: %v", err)
	}
}

func TestReportAccessError_EscapesHeaders(t *testing.T) {
	router := setupRouter(t, filepath.Join(t.TempDir(), "access-error.log"))

	req := httptest.NewRequest(http.MethodGet, "/access-error", nil)
	req.Header.Set("X-Evil", `<script>alert("x")</script>&`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("unescaped script tag in page")
	}
	if !strings.Contains(body, "[HTTP_X_EVIL] --&gt; [&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;&amp;]") {
		t.Errorf("escaped header line not found in page")
	}
}

func TestReportAccessError_DistinctIDs(t *testing.T) {
	router := setupRouter(t, filepath.Join(t.TempDir(), "access-error.log"))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/access-error", nil))
		id := pageCorrelationID(t, rec.Body.String())
		if seen[id] {
			t.Fatalf("duplicate correlation id %s", id)
		}
		seen[id] = true
	}
}

func TestHealthz(t *testing.T) {
	router := setupRouter(t, filepath.Join(t.TempDir(), "access-error.log"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("want status 200, got %d", rec.Code)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["status"] != "ok" {
		t.Errorf("want status ok, got %v", resp["status"])
	}
}

func TestNotFound(t *testing.T) {
	router := setupRouter(t, filepath.Join(t.TempDir(), "access-error.log"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("want status 404, got %d", rec.Code)
	}
}

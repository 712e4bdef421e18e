package run

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"werdiff/internal/config"
	"werdiff/internal/control"
	"werdiff/internal/logging"
	"werdiff/internal/report"

	"github.com/sirupsen/logrus"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	dir := t.TempDir()
	cfg.Paths.StateDir = dir
	cfg.Paths.LogPath = filepath.Join(dir, "werdiff.log")
	cfg.Paths.HistoryPath = filepath.Join(dir, "scores.log")
	cfg.Paths.PidPath = filepath.Join(dir, "werdiff.pid")
	cfg.Server.History = 2
	return cfg
}

// metricValue reads a counter from the server registry. outcome selects a
// label value for vectors and is ignored otherwise.
func metricValue(t *testing.T, srv *Server, name, outcome string) float64 {
	t.Helper()
	families, err := srv.metrics.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if outcome == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func postScore(t *testing.T, url string, req control.ScoreRequest) *http.Response {
	t.Helper()
	body, _ := json.Marshal(req)
	resp, err := http.Post(url+"/v1/score", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func TestScoreEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tokenize.Lowercase = true
	srv := New(cfg, logging.NewTestLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := postScore(t, ts.URL, control.ScoreRequest{Name: "clip", Reference: "What is it", Hypothesis: "what is", CER: true})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("missing request id")
	}
	var doc report.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.WordErrorRate != "33.33%" || doc.Result.Deletions != 1 || doc.Name != "clip" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.CharErrorRate == nil {
		t.Fatalf("expected CER")
	}

	data, err := os.ReadFile(cfg.Paths.HistoryPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(string(data), "\tclip\t33.33%\t1\t3\n") {
		t.Fatalf("unexpected history: %q", data)
	}
}

func TestScoreEndpointTokens(t *testing.T) {
	srv := New(testConfig(t), logging.NewTestLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := postScore(t, ts.URL, control.ScoreRequest{
		ReferenceTokens:  []string{"new york", "city"},
		HypothesisTokens: []string{"new york", "city"},
	})
	defer resp.Body.Close()
	var doc report.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Result.ReferenceLength != 2 || doc.WordErrorRate != "0.00%" {
		t.Fatalf("tokens were re-split: %+v", doc.Result)
	}
}

func TestScoreEndpointErrors(t *testing.T) {
	srv := New(testConfig(t), logging.NewTestLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := postScore(t, ts.URL, control.ScoreRequest{Reference: "", Hypothesis: "x"})
	var msg control.SimpleResponse
	_ = json.NewDecoder(resp.Body).Decode(&msg)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest || msg.OK || !strings.Contains(msg.Message, "reference is empty") {
		t.Fatalf("empty reference: status %d, %+v", resp.StatusCode, msg)
	}

	resp, err := http.Post(ts.URL+"/v1/score", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/score")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}

	if got := metricValue(t, srv, "werdiff_score_requests_total", "invalid"); got != 1 {
		t.Fatalf("invalid requests = %v", got)
	}
	if got := metricValue(t, srv, "werdiff_score_requests_total", "bad_request"); got != 1 {
		t.Fatalf("bad requests = %v", got)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestScoreEndpointLogsSkippedCER(t *testing.T) {
	var logs syncBuffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	srv := New(testConfig(t), logger)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// A reference made of one empty token has no characters to compare.
	resp := postScore(t, ts.URL, control.ScoreRequest{
		ReferenceTokens:  []string{""},
		HypothesisTokens: []string{"x"},
		CER:              true,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var doc report.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.CharErrorRate != nil {
		t.Fatalf("unexpected CER %v", *doc.CharErrorRate)
	}
	if !strings.Contains(logs.String(), "character error rate skipped") {
		t.Fatalf("missing warning in logs: %q", logs.String())
	}
}

func TestStatusKeepsRecentHistory(t *testing.T) {
	srv := New(testConfig(t), logging.NewTestLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, name := range []string{"a", "b", "c"} {
		resp := postScore(t, ts.URL, control.ScoreRequest{Name: name, Reference: "a b", Hypothesis: "a"})
		resp.Body.Close()
	}
	resp, err := http.Get(ts.URL + "/v1/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var st control.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Running || st.Scored != 3 {
		t.Fatalf("status = %+v", st)
	}
	if len(st.Recent) != 2 || st.Recent[0].Name != "b" || st.Recent[1].Name != "c" {
		t.Fatalf("recent = %+v", st.Recent)
	}
	if st.Recent[1].WordErrorRate != "50.00%" {
		t.Fatalf("recent wer = %q", st.Recent[1].WordErrorRate)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := New(testConfig(t), logging.NewTestLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var health control.SimpleResponse
	_ = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if !health.OK {
		t.Fatalf("health = %+v", health)
	}

	resp = postScore(t, ts.URL, control.ScoreRequest{Reference: "cat", Hypothesis: "bat"})
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{
		`werdiff_score_requests_total{outcome="ok"} 1`,
		"werdiff_word_error_rate_percent_count 1",
		"werdiff_score_duration_seconds_bucket",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	ts := httptest.NewServer(New(cfg, logging.NewTestLogger()).Handler())
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHookWorkerFiresOnThreshold(t *testing.T) {
	if _, err := os.Stat("/bin/echo"); err != nil {
		t.Skip("/bin/echo not available")
	}
	cfg := testConfig(t)
	cfg.Hooks = []config.HookConfig{{MinWER: 50, Command: "/bin/echo", TimeoutSec: 1}}
	srv := New(cfg, logging.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.hookWorker(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// 0% stays below the threshold, 100% fires.
	resp := postScore(t, ts.URL, control.ScoreRequest{Reference: "a", Hypothesis: "a"})
	resp.Body.Close()
	resp = postScore(t, ts.URL, control.ScoreRequest{Reference: "a", Hypothesis: "b"})
	resp.Body.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if metricValue(t, srv, "werdiff_hooks_sent_total", "") == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("hooks sent = %v, want 1", metricValue(t, srv, "werdiff_hooks_sent_total", ""))
}

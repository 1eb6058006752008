package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordRequest(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordRequest("/api/chat", http.StatusOK, 150*time.Millisecond)
	c.RecordRequest("/api/chat", http.StatusOK, 50*time.Millisecond)
	c.RecordRequest("/api/chat", http.StatusGatewayTimeout, time.Minute)

	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("/api/chat", "200")); got != 2 {
		t.Errorf("requests_total{200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("/api/chat", "504")); got != 1 {
		t.Errorf("requests_total{504} = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.requestDuration); n != 1 {
		t.Errorf("expected 1 duration series, got %d", n)
	}
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordError("/api/agent/search", "upstream_timeout")
	c.RecordStreamChunks("/api/chat/stream", 3)
	c.RecordStreamChunks("/api/chat/stream", 0)
	c.RecordPromptTokens("/api/chat/timed", 42)

	if got := testutil.ToFloat64(c.upstreamErrors.WithLabelValues("/api/agent/search", "upstream_timeout")); got != 1 {
		t.Errorf("upstream_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.streamChunks.WithLabelValues("/api/chat/stream")); got != 3 {
		t.Errorf("stream_chunks_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.promptTokens.WithLabelValues("/api/chat/timed")); got != 42 {
		t.Errorf("prompt_tokens_estimate_total = %v, want 42", got)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.RecordRequest("/api/chat", 200, time.Second)
	c.RecordError("/api/chat", "internal")
	c.RecordStreamChunks("/api/chat", 1)
	c.RecordPromptTokens("/api/chat", 1)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.RecordRequest("/api/chat", http.StatusOK, time.Second)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "goatrelay_relay_requests_total") {
		t.Error("missing relay requests metric")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("missing Go runtime metrics")
	}
}

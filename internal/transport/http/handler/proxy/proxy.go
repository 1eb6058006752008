// Package proxy implements the playground relay endpoints.
package proxy

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/config"
	"github.com/mandalnilabja/goatrelay/internal/metrics"
	"github.com/mandalnilabja/goatrelay/internal/relay"
	"github.com/mandalnilabja/goatrelay/internal/secrets"
	"github.com/mandalnilabja/goatrelay/internal/storage"
	"github.com/mandalnilabja/goatrelay/internal/storage/models"
	"github.com/mandalnilabja/goatrelay/internal/tokenizer"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/middleware"
	"github.com/mandalnilabja/goatrelay/internal/upstream"
)

// Endpoint paths.
const (
	PathChat          = "/api/chat"
	PathChatTimed     = "/api/chat/timed"
	PathChatStream    = "/api/chat/stream"
	PathAgentSearch   = "/api/agent/search"
	PathAgentResearch = "/api/agent/research"
)

// tokenCountTimeout is the longest a response waits on the prompt estimate.
const tokenCountTimeout = 100 * time.Millisecond

// Handlers holds the dependencies for relay HTTP handlers. Tokenizer,
// Metrics and Storage are optional.
type Handlers struct {
	Secrets   secrets.Source
	Inference *upstream.Inference
	Agent     *upstream.Agent
	Timeouts  config.Timeouts
	Tokenizer tokenizer.Estimator
	Metrics   *metrics.Collector
	Storage   storage.Storage
	Logger    *slog.Logger
}

// New creates a new instance of relay handlers.
func New(src secrets.Source, inf *upstream.Inference, agent *upstream.Agent, timeouts config.Timeouts, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Secrets:   src,
		Inference: inf,
		Agent:     agent,
		Timeouts:  timeouts,
		Logger:    logger,
	}
}

// call tracks one relay from receipt to completion.
type call struct {
	endpoint           string
	requestID          string
	timeout            time.Duration
	start              time.Time
	model              string
	credentialsPresent bool
	promptTokens       int
}

func (h *Handlers) begin(r *http.Request, endpoint string, timeout time.Duration) *call {
	return &call{
		endpoint:  endpoint,
		requestID: middleware.GetRequestID(r.Context()),
		timeout:   timeout,
		start:     time.Now(),
	}
}

// resolve looks up the endpoint's secrets. Only their presence is logged.
func (h *Handlers) resolve(c *call, keys ...string) (secrets.Set, error) {
	set, err := secrets.Resolve(h.Secrets, keys...)
	c.credentialsPresent = err == nil
	h.Logger.Debug("credentials resolved",
		"endpoint", c.endpoint,
		"request_id", c.requestID,
		"credentials_present", c.credentialsPresent,
	)
	return set, err
}

// decode reads the bounded request body as a JSON object.
func decode(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	return relay.DecodeObject(http.MaxBytesReader(w, r.Body, relay.MaxBodyBytes))
}

// fail writes the single error response for err and records the outcome.
func (h *Handlers) fail(w http.ResponseWriter, c *call, err error) {
	m := relay.WriteError(w, err, c.timeout)
	h.Metrics.RecordError(c.endpoint, string(m.Kind))

	attrs := []any{
		"endpoint", c.endpoint,
		"request_id", c.requestID,
		"status", m.Status,
		"error_kind", string(m.Kind),
		"credentials_present", c.credentialsPresent,
		"duration_ms", time.Since(c.start).Milliseconds(),
	}
	switch m.Kind {
	case relay.KindBadRequest, relay.KindUpstreamStatus:
		h.Logger.Info("relay rejected", attrs...)
	default:
		h.Logger.Warn("relay failed", append(attrs, "error", err)...)
	}
	h.record(c, m.Status, true)
}

// succeed records a relay that produced a 2xx response.
func (h *Handlers) succeed(c *call, attrs ...any) {
	h.Logger.Info("relay completed", append([]any{
		"endpoint", c.endpoint,
		"request_id", c.requestID,
		"model", c.model,
		"duration_ms", time.Since(c.start).Milliseconds(),
	}, attrs...)...)
	h.record(c, http.StatusOK, false)
}

func (h *Handlers) record(c *call, status int, failed bool) {
	d := time.Since(c.start)
	h.Metrics.RecordRequest(c.endpoint, status, d)
	h.Metrics.RecordPromptTokens(c.endpoint, c.promptTokens)

	if h.Storage == nil {
		return
	}
	row := models.NewDailyRelay(c.start, c.endpoint, c.model, failed, c.promptTokens, d)
	go func() {
		if err := h.Storage.RecordRelay(row); err != nil {
			h.Logger.Warn("failed to record relay stats", "endpoint", c.endpoint, "error", err)
		}
	}()
}

// estimatePrompt starts a background prompt estimate. The returned func
// waits at most tokenCountTimeout for it and yields 0 when unavailable.
func (h *Handlers) estimatePrompt(payload map[string]any) func() int {
	if h.Tokenizer == nil {
		return func() int { return 0 }
	}

	tokensChan := make(chan int, 1)
	go func() {
		defer close(tokensChan)
		if n, err := h.Tokenizer.EstimatePrompt(payload); err == nil {
			tokensChan <- n
		}
	}()

	return func() int {
		select {
		case n := <-tokensChan:
			return n
		case <-time.After(tokenCountTimeout):
			return 0
		}
	}
}

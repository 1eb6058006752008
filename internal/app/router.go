package app

import (
	"log/slog"
	"net/http"

	"github.com/mandalnilabja/goatrelay/internal/metrics"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/handler"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/handler/proxy"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/middleware"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// NewRouter creates and configures the HTTP router with all application routes.
// Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	if opts == nil {
		opts = &RouterOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	// Relay routes. They are registered without a method so that any verb
	// other than POST gets the JSON 405 instead of the mux's plain-text one.
	postOnly := middleware.AllowMethods(http.MethodPost)
	mux.Handle(proxy.PathChat, postOnly(http.HandlerFunc(repo.Proxy.Chat)))
	mux.Handle(proxy.PathChatTimed, postOnly(http.HandlerFunc(repo.Proxy.ChatTimed)))
	mux.Handle(proxy.PathChatStream, postOnly(http.HandlerFunc(repo.Proxy.ChatStream)))
	mux.Handle(proxy.PathAgentSearch, postOnly(http.HandlerFunc(repo.Proxy.AgentSearch)))
	mux.Handle(proxy.PathAgentResearch, postOnly(http.HandlerFunc(repo.Proxy.AgentResearch)))

	// Infrastructure routes
	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)
	mux.HandleFunc("GET /api/stats", repo.Infra.GetStats)
	mux.HandleFunc("GET /api/stats/daily", repo.Infra.GetDailyStats)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	// Root returns JSON status; everything unmatched lands here too.
	mux.HandleFunc("/", repo.Infra.RootStatus)

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.RequestID(h)

	// CORS is outermost so preflights short-circuit and every response,
	// including recovered panics, carries the headers.
	h = middleware.CORS(h)

	return h
}

package infra

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/goatrelay/internal/version"
)

// RootStatus returns JSON status and version information at /. It is also
// the catch-all route, so unknown paths get a JSON 404.
func (h *Handlers) RootStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		shared.WriteJSONError(w, "not found: "+r.URL.Path, http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		shared.WriteJSONError(w, "method "+r.Method+" not allowed", http.StatusMethodNotAllowed)
		return
	}
	shared.WriteJSON(w, map[string]any{
		"name":    "goatrelay",
		"version": version.Version,
		"status":  "running",
		"endpoints": []string{
			"/api/chat",
			"/api/chat/timed",
			"/api/chat/stream",
			"/api/agent/search",
			"/api/agent/research",
		},
	}, http.StatusOK)
}

// HealthCheck handler returns the application health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, map[string]any{
		"status":         "active",
		"app":            "goatrelay",
		"uptime_seconds": int64(time.Since(h.StartTime).Seconds()),
		"stats_enabled":  h.Storage != nil,
	}, http.StatusOK)
}

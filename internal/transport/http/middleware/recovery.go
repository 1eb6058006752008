package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mandalnilabja/goatrelay/internal/types"
)

// Recovery turns handler panics into a 500 server_error response. The panic
// value and stack are logged; clients only see a generic message.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let the server abort the connection as it normally would.
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic in handler",
					"error", rec,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				types.WriteError(w, http.StatusInternalServerError,
					types.ErrServer("an internal error occurred"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

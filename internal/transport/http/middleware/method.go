package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mandalnilabja/goatrelay/internal/types"
)

// AllowMethods rejects requests whose method is not listed with 405, an
// Allow header and a JSON error body.
func AllowMethods(methods ...string) func(http.Handler) http.Handler {
	allowed := strings.Join(methods, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, m := range methods {
				if r.Method == m {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Allow", allowed)
			types.WriteError(w, http.StatusMethodNotAllowed,
				types.ErrInvalidRequest(fmt.Sprintf("method %s not allowed, use %s", r.Method, allowed)))
		})
	}
}

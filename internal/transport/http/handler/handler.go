// Package handler composes the HTTP handlers served by the router.
package handler

import (
	"time"

	"github.com/mandalnilabja/goatrelay/internal/storage"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/handler/infra"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/handler/proxy"
)

// Repo composes all domain-specific handlers.
type Repo struct {
	Proxy *proxy.Handlers
	Infra *infra.Handlers
}

// NewRepo creates a new instance of the composed handler repository.
// store may be nil when the stats store is disabled.
func NewRepo(p *proxy.Handlers, store storage.Storage) *Repo {
	return &Repo{
		Proxy: p,
		Infra: infra.New(store, time.Now()),
	}
}

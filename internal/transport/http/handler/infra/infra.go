// Package infra serves the non-relay endpoints: status, health and stats.
package infra

import (
	"time"

	"github.com/mandalnilabja/goatrelay/internal/storage"
)

// Handlers holds the dependencies for infrastructure HTTP handlers.
// Storage is nil when the stats store is disabled.
type Handlers struct {
	Storage   storage.Storage
	StartTime time.Time
}

// New creates a new instance of infrastructure handlers.
func New(store storage.Storage, startTime time.Time) *Handlers {
	return &Handlers{
		Storage:   store,
		StartTime: startTime,
	}
}

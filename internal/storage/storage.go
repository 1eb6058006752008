// Package storage provides the optional relay stats store.
package storage

import (
	"github.com/mandalnilabja/goatrelay/internal/storage/models"
	"github.com/mandalnilabja/goatrelay/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	DailyRelay    = models.DailyRelay
	EndpointStats = models.EndpointStats
	RelayStats    = models.RelayStats
	StatsFilter   = models.StatsFilter
)

// Re-export errors from sqlite package
var (
	ErrInvalidInput  = sqlite.ErrInvalidInput
	ErrStorageClosed = sqlite.ErrStorageClosed
)

// Storage keeps daily aggregate counters about relayed requests.
type Storage interface {
	RecordRelay(r *models.DailyRelay) error
	GetRelayStats(filter models.StatsFilter) (*models.RelayStats, error)
	GetDailyRelays(startDate, endDate string) ([]*models.DailyRelay, error)

	Close() error
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return sqlite.New(dbPath)
}

package sqlite

import (
	"fmt"

	"github.com/mandalnilabja/goatrelay/internal/storage/models"
)

const dateLayout = "2006-01-02"

func statsWhere(filter models.StatsFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Endpoint != "" {
		where += " AND endpoint = ?"
		args = append(args, filter.Endpoint)
	}
	if filter.StartDate != nil {
		where += " AND date >= ?"
		args = append(args, filter.StartDate.Format(dateLayout))
	}
	if filter.EndDate != nil {
		where += " AND date <= ?"
		args = append(args, filter.EndDate.Format(dateLayout))
	}
	return where, args
}

// GetRelayStats returns totals and a per-endpoint breakdown.
func (s *Storage) GetRelayStats(filter models.StatsFilter) (*models.RelayStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	where, args := statsWhere(filter)

	stats := &models.RelayStats{
		Endpoints: make(map[string]*models.EndpointStats),
	}
	err := s.db.QueryRow(`SELECT
		COALESCE(SUM(request_count), 0),
		COALESCE(SUM(error_count), 0),
		COALESCE(SUM(prompt_tokens_estimate), 0),
		COALESCE(SUM(duration_ms), 0)
		FROM relay_daily`+where, args...).Scan(
		&stats.TotalRequests,
		&stats.ErrorCount,
		&stats.PromptTokensEstimate,
		&stats.TotalDurationMS,
	)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}

	rows, err := s.db.Query(`SELECT endpoint,
		COALESCE(SUM(request_count), 0),
		COALESCE(SUM(error_count), 0),
		COALESCE(SUM(prompt_tokens_estimate), 0),
		COALESCE(SUM(duration_ms), 0)
		FROM relay_daily`+where+` GROUP BY endpoint ORDER BY endpoint`, args...)
	if err != nil {
		return nil, fmt.Errorf("query endpoints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			es         models.EndpointStats
			durationMS int64
		)
		if err := rows.Scan(&es.Endpoint, &es.RequestCount, &es.ErrorCount,
			&es.PromptTokensEstimate, &durationMS); err != nil {
			return nil, err
		}
		if es.RequestCount > 0 {
			es.AvgDurationMS = durationMS / int64(es.RequestCount)
		}
		stats.Endpoints[es.Endpoint] = &es
	}

	return stats, rows.Err()
}

// GetDailyRelays returns the aggregate rows between two YYYY-MM-DD dates,
// inclusive.
func (s *Storage) GetDailyRelays(startDate, endDate string) ([]*models.DailyRelay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.Query(`
		SELECT date, endpoint, model, request_count, error_count,
			prompt_tokens_estimate, duration_ms
		FROM relay_daily
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, endpoint ASC, model ASC
	`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DailyRelay
	for rows.Next() {
		var r models.DailyRelay
		if err := rows.Scan(&r.Date, &r.Endpoint, &r.Model, &r.RequestCount,
			&r.ErrorCount, &r.PromptTokensEstimate, &r.DurationMS); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}

	return out, rows.Err()
}

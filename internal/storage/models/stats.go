// Package models holds the records kept by the relay stats store.
package models

import "time"

// DailyRelay is one aggregate row: all relays of a day for one endpoint and
// model. No request or response content is ever stored.
type DailyRelay struct {
	Date                 string `json:"date"` // YYYY-MM-DD, UTC
	Endpoint             string `json:"endpoint"`
	Model                string `json:"model,omitempty"`
	RequestCount         int    `json:"request_count"`
	ErrorCount           int    `json:"error_count"`
	PromptTokensEstimate int    `json:"prompt_tokens_estimate"`
	DurationMS           int64  `json:"duration_ms"`
}

// EndpointStats is the per-endpoint breakdown of RelayStats.
type EndpointStats struct {
	Endpoint             string `json:"endpoint"`
	RequestCount         int    `json:"request_count"`
	ErrorCount           int    `json:"error_count"`
	PromptTokensEstimate int    `json:"prompt_tokens_estimate"`
	AvgDurationMS        int64  `json:"avg_duration_ms"`
}

// RelayStats aggregates DailyRelay rows over a period.
type RelayStats struct {
	TotalRequests        int                       `json:"total_requests"`
	ErrorCount           int                       `json:"error_count"`
	PromptTokensEstimate int                       `json:"prompt_tokens_estimate"`
	TotalDurationMS      int64                     `json:"total_duration_ms"`
	Endpoints            map[string]*EndpointStats `json:"endpoints,omitempty"`
}

// StatsFilter narrows a stats query. Nil dates are unbounded.
type StatsFilter struct {
	Endpoint  string
	StartDate *time.Time
	EndDate   *time.Time
}

// NewDailyRelay builds the single-request row recorded after one relay.
func NewDailyRelay(at time.Time, endpoint, model string, failed bool, promptTokens int, d time.Duration) *DailyRelay {
	r := &DailyRelay{
		Date:                 at.UTC().Format("2006-01-02"),
		Endpoint:             endpoint,
		Model:                model,
		RequestCount:         1,
		PromptTokensEstimate: promptTokens,
		DurationMS:           d.Milliseconds(),
	}
	if failed {
		r.ErrorCount = 1
	}
	return r
}

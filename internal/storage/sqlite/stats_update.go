package sqlite

import (
	"fmt"

	"github.com/mandalnilabja/goatrelay/internal/storage/models"
)

// RecordRelay adds r to the aggregate row for its (date, endpoint, model).
func (s *Storage) RecordRelay(r *models.DailyRelay) error {
	if r == nil || r.Date == "" || r.Endpoint == "" {
		return fmt.Errorf("%w: date and endpoint are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO relay_daily (date, endpoint, model, request_count,
			error_count, prompt_tokens_estimate, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, endpoint, model) DO UPDATE SET
			request_count = request_count + excluded.request_count,
			error_count = error_count + excluded.error_count,
			prompt_tokens_estimate = prompt_tokens_estimate + excluded.prompt_tokens_estimate,
			duration_ms = duration_ms + excluded.duration_ms
	`, r.Date, r.Endpoint, r.Model, r.RequestCount,
		r.ErrorCount, r.PromptTokensEstimate, r.DurationMS)
	if err != nil {
		return fmt.Errorf("record relay: %w", err)
	}
	return nil
}

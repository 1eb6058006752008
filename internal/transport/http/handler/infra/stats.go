package infra

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/storage"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/handler/shared"
)

const dateLayout = "2006-01-02"

// GetStats handles GET /api/stats.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		shared.WriteJSONError(w, "stats store is disabled", http.StatusNotFound)
		return
	}

	filter, err := parseStatsFilter(r)
	if err != nil {
		shared.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := h.Storage.GetRelayStats(filter)
	if err != nil {
		shared.WriteJSONError(w, "failed to get relay stats: "+err.Error(), http.StatusInternalServerError)
		return
	}
	shared.WriteJSON(w, stats, http.StatusOK)
}

// GetDailyStats handles GET /api/stats/daily. The range defaults to the last
// 30 days.
func (h *Handlers) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		shared.WriteJSONError(w, "stats store is disabled", http.StatusNotFound)
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if startDate == "" {
		startDate = time.Now().UTC().AddDate(0, 0, -30).Format(dateLayout)
	}
	if endDate == "" {
		endDate = time.Now().UTC().Format(dateLayout)
	}
	for _, d := range []string{startDate, endDate} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			shared.WriteJSONError(w, "invalid date "+d+": expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	rows, err := h.Storage.GetDailyRelays(startDate, endDate)
	if err != nil {
		shared.WriteJSONError(w, "failed to get daily stats: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []*storage.DailyRelay{}
	}
	shared.WriteJSON(w, map[string]any{
		"daily":      rows,
		"start_date": startDate,
		"end_date":   endDate,
	}, http.StatusOK)
}

func parseStatsFilter(r *http.Request) (storage.StatsFilter, error) {
	filter := storage.StatsFilter{
		Endpoint: r.URL.Query().Get("endpoint"),
	}

	if v := r.URL.Query().Get("start_date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, errInvalidDate(v)
		}
		filter.StartDate = &t
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, errInvalidDate(v)
		}
		filter.EndDate = &t
	}
	return filter, nil
}

type errInvalidDate string

func (e errInvalidDate) Error() string {
	return "invalid date " + string(e) + ": expected YYYY-MM-DD"
}

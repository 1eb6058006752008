package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mandalnilabja/goatrelay/internal/storage/models"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestRecordRelay_UpsertArgs(t *testing.T) {
	s, mock := newMockStorage(t)
	r := models.NewDailyRelay(time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC), "/api/chat", "x", true, 12, 250*time.Millisecond)

	mock.ExpectExec(`INSERT INTO relay_daily`).
		WithArgs("2026-01-02", "/api/chat", "x", 1, 1, 12, int64(250)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.RecordRelay(r); err != nil {
		t.Fatalf("RecordRelay failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordRelay_ExecError(t *testing.T) {
	s, mock := newMockStorage(t)
	dbErr := errors.New("database is locked")

	mock.ExpectExec(`INSERT INTO relay_daily`).WillReturnError(dbErr)

	err := s.RecordRelay(models.NewDailyRelay(time.Now(), "/api/chat", "", false, 0, 0))
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetRelayStats_QueryError(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`FROM relay_daily WHERE 1=1 AND endpoint = \?`).
		WithArgs("/api/chat").
		WillReturnError(errors.New("no such table: relay_daily"))

	if _, err := s.GetRelayStats(models.StatsFilter{Endpoint: "/api/chat"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGetRelayStats_Breakdown(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`FROM relay_daily WHERE 1=1`).
		WillReturnRows(sqlmock.NewRows([]string{"requests", "errors", "tokens", "duration"}).
			AddRow(4, 1, 100, 2000))
	mock.ExpectQuery(`GROUP BY endpoint`).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "requests", "errors", "tokens", "duration"}).
			AddRow("/api/chat", 3, 1, 100, 900).
			AddRow("/api/agent/research", 1, 0, 0, 1100))

	stats, err := s.GetRelayStats(models.StatsFilter{})
	if err != nil {
		t.Fatalf("GetRelayStats failed: %v", err)
	}
	if stats.TotalRequests != 4 || stats.TotalDurationMS != 2000 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if got := stats.Endpoints["/api/chat"].AvgDurationMS; got != 300 {
		t.Errorf("expected avg 300ms, got %d", got)
	}
	if got := stats.Endpoints["/api/agent/research"].RequestCount; got != 1 {
		t.Errorf("expected 1 research request, got %d", got)
	}
}

func TestClose_Idempotent(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectClose()

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if err := s.RecordRelay(&models.DailyRelay{Date: "2026-01-01", Endpoint: "/api/chat"}); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("expected ErrStorageClosed, got %v", err)
	}
}

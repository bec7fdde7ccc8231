package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"weather_station/internal/models"
	"weather_station/internal/repository/db"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMockRepo(t *testing.T) (*EventSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("mock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewEventSQLite(db), mock
}

var eventColumns = []string{"id", "occurred_at", "type", "message", "meta"}

func TestAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "DIRECTIVE", "display off", `{"source":"primary"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.StationEvent{
		Type:        "  directive ",
		Description: "display off",
		Metadata:    map[string]any{"source": "primary"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestAppend_KeepsGivenIDAndTime(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.FixedZone("X", 2*3600))
	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs("ev-1", "2024-05-01 06:30:00", "STARTUP", "agent started", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.StationEvent{
		EventID:     "ev-1",
		OccurredAt:  at,
		Type:        models.EventStartup,
		Description: "agent started",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	boom := errors.New("database is locked")
	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).WillReturnError(boom)

	err := repo.Append(ctx(t), models.StationEvent{Type: "x", Description: "y"})
	if !errors.Is(err, boom) {
		t.Fatalf("Append err = %v, want wrapping %v", err, boom)
	}
}

func TestList_NoFilters_And_MetadataParsing(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	t1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	rows := sqlmock.NewRows(eventColumns).
		AddRow("a", t1, "UPLOAD_FAILED", "primary", `{"kind":"network"}`).
		AddRow("b", t2, "STATE_WRITE", "write failed", "not-json").
		AddRow("c", t2, "STARTUP", "hello", nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL + " ORDER BY occurred_at ASC")).WillReturnRows(rows)

	got, err := repo.List(ctx(t), EventQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	meta, ok := got[0].Metadata.(map[string]any)
	if !ok || meta["kind"] != "network" {
		t.Fatalf("metadata[0] = %#v", got[0].Metadata)
	}
	if got[1].Metadata != "not-json" {
		t.Fatalf("metadata[1] = %#v, want raw string", got[1].Metadata)
	}
	if got[2].Metadata != nil {
		t.Fatalf("metadata[2] = %#v, want nil", got[2].Metadata)
	}
}

func TestList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	q := selectEventsSQL + " WHERE occurred_at >= ? AND occurred_at <= ? AND type = ?" +
		" AND json_extract(meta, '$.target') = ? ORDER BY occurred_at ASC"
	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs("2024-05-01 00:00:00", "2024-05-02 00:00:00", "UPLOAD_FAILED", "secondary").
		WillReturnRows(sqlmock.NewRows(eventColumns))

	got, err := repo.List(ctx(t), EventQuery{From: from, To: to, Type: " upload_failed ", Target: models.TargetSecondary})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestList_ScanError(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(eventColumns).AddRow("a", "not-a-time", "X", "y", nil)
	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL)).WillReturnRows(rows)

	if _, err := repo.List(ctx(t), EventQuery{}); err == nil {
		t.Fatalf("expected scan error")
	}
}

func TestEventSQLite_TargetFilterOnRealDB(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	repo := NewEventSQLite(conn)

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seed := []models.StationEvent{
		{OccurredAt: base, Type: models.EventStartup, Description: "station started"},
		{OccurredAt: base.Add(time.Minute), Type: models.EventUploadFailed, Description: "primary upload failed",
			Metadata: map[string]any{"target": models.TargetPrimary, "kind": "network"}},
		{OccurredAt: base.Add(2 * time.Minute), Type: models.EventUploadFailed, Description: "secondary upload failed",
			Metadata: map[string]any{"target": models.TargetSecondary, "kind": "http_status"}},
		{OccurredAt: base.Add(3 * time.Minute), Type: models.EventUploadFailed, Description: "primary upload failed",
			Metadata: map[string]any{"target": models.TargetPrimary, "kind": "parse"}},
	}
	for _, ev := range seed {
		if err := repo.Append(ctx(t), ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := repo.List(ctx(t), EventQuery{Type: models.EventUploadFailed, Target: models.TargetPrimary})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 primary failures", len(got))
	}
	for i, want := range []string{"network", "parse"} {
		meta, _ := got[i].Metadata.(map[string]any)
		if meta["kind"] != want || !got[i].OccurredAt.Equal(seed[1+2*i].OccurredAt) {
			t.Fatalf("event %d = %+v, want kind %s", i, got[i], want)
		}
	}

	all, err := repo.List(ctx(t), EventQuery{From: base.Add(time.Minute), To: base.Add(2 * time.Minute)})
	if err != nil {
		t.Fatalf("List range: %v", err)
	}
	if len(all) != 2 || all[0].Type != models.EventUploadFailed {
		t.Fatalf("range = %+v", all)
	}
}

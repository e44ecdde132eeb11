package transcript

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"scribechat/internal/config"
	"scribechat/internal/models"
	"scribechat/internal/storage"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: ":memory:"},
		},
	}
	db, err := storage.Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(openTestDB(t), nil)
}

func sample(id string) *models.Transcript {
	return &models.Transcript{
		TranscriptID: id,
		Filename:     "clip.mp3",
		Transcript:   "hello world",
		Summary:      "greeting",
		UserID:       "alice",
	}
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	rec := sample("t-1")
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if rec.ID == 0 {
		t.Fatalf("Save did not assign a row id")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatalf("Save did not stamp created_at")
	}

	got, err := store.Get(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Transcript != "hello world" || got.Summary != "greeting" || got.UserID != "alice" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestSaveRequiresTranscriptID(t *testing.T) {
	store := newTestStore(t)
	rec := sample("")
	if err := store.Save(context.Background(), rec); err == nil {
		t.Fatalf("expected error for missing transcript_id")
	}
}

func TestSaveRejectsDuplicateTranscriptID(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(context.Background(), sample("t-1")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := store.Save(context.Background(), sample("t-1")); err == nil {
		t.Fatalf("expected unique constraint violation")
	}
}

func TestGetUnknownID(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"t-1", "t-2", "t-3"} {
		if err := store.Save(context.Background(), sample(id)); err != nil {
			t.Fatalf("Save %s error: %v", id, err)
		}
	}

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	if list[0].TranscriptID != "t-3" || list[2].TranscriptID != "t-1" {
		t.Fatalf("unexpected order: %v, %v, %v", list[0].TranscriptID, list[1].TranscriptID, list[2].TranscriptID)
	}
}

func TestListEmpty(t *testing.T) {
	store := newTestStore(t)
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d records", len(list))
	}
}

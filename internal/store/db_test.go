package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/camilorojas87/mixtaped/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func TestPreferenceRepo_InsertAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPreferenceRepo(db)

	rec := &domain.PreferenceRecord{
		Genre:     domain.GenreJazz,
		SongID:    42,
		Score:     2.0,
		Immutable: false,
	}
	if err := repo.Insert(rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("Insert should assign an id")
	}
	if rec.InsertedAt.IsZero() {
		t.Error("Insert should assign an insertion time")
	}

	records, err := repo.ListByGenre(domain.GenreJazz)
	if err != nil {
		t.Fatalf("ListByGenre failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].SongID != 42 {
		t.Errorf("Expected song id 42, got %d", records[0].SongID)
	}
	if records[0].Score != 2.0 {
		t.Errorf("Expected score 2.0, got %v", records[0].Score)
	}

	// Other genres see nothing
	other, err := repo.ListByGenre(domain.GenreRock)
	if err != nil {
		t.Fatalf("ListByGenre failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no Rock records, got %d", len(other))
	}
}

func TestPreferenceRepo_LatestFeedback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPreferenceRepo(db)

	// No history yet
	rec, err := repo.LatestFeedback(7)
	if err != nil {
		t.Fatalf("LatestFeedback failed: %v", err)
	}
	if rec != nil {
		t.Fatalf("Expected no feedback, got %+v", rec)
	}

	now := time.Now().UTC()
	older := &domain.PreferenceRecord{
		Genre: domain.GenrePop, SongID: 7, Score: 2.0, InsertedAt: now.Add(-time.Hour),
	}
	newer := &domain.PreferenceRecord{
		Genre: domain.GenrePop, SongID: 7, Score: -1.0, InsertedAt: now,
	}
	baseline := &domain.PreferenceRecord{
		Genre: domain.GenrePop, SongID: 7, Score: 10.0, Immutable: true, InsertedAt: now.Add(time.Hour),
	}
	for _, r := range []*domain.PreferenceRecord{older, newer, baseline} {
		if err := repo.Insert(r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	rec, err = repo.LatestFeedback(7)
	if err != nil {
		t.Fatalf("LatestFeedback failed: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected feedback record")
	}
	// Immutable records are invisible to feedback lookup even when newer
	if rec.ID != newer.ID {
		t.Errorf("Expected latest mutable record %s, got %s", newer.ID, rec.ID)
	}
	if rec.Score != -1.0 {
		t.Errorf("Expected score -1.0, got %v", rec.Score)
	}
}

func TestPreferenceRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPreferenceRepo(db)

	rec := &domain.PreferenceRecord{Genre: domain.GenreRnB, SongID: 1, Score: 2.0}
	if err := repo.Insert(rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.Delete(rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Deleting again reports not found
	if err := repo.Delete(rec.ID); err == nil {
		t.Error("Expected error deleting missing record")
	}
}

func TestPreferenceRepo_DeleteAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPreferenceRepo(db)

	for _, g := range domain.Genres() {
		rec := &domain.PreferenceRecord{Genre: g, Score: 10.0, Immutable: true}
		if err := repo.Insert(rec); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	if err := repo.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	for _, g := range domain.Genres() {
		records, err := repo.ListByGenre(g)
		if err != nil {
			t.Fatalf("ListByGenre failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Expected no %s records after DeleteAll, got %d", g, len(records))
		}
	}
}

func TestQueueRepo_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQueueRepo(db)

	// Empty database loads an empty queue
	tracks, current, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(tracks) != 0 || current != 0 {
		t.Errorf("Expected empty queue, got %d items, cursor %d", len(tracks), current)
	}

	saved := []domain.Track{
		{ID: 1, Title: "First", Artist: "A", Genre: domain.GenreJazz, StreamLocator: "s/1/output.m3u8"},
		{ID: 2, Title: "Second", Artist: "B", Genre: domain.GenreRock, StreamLocator: "s/2/output.m3u8", Thumbnail: []byte{0xFF, 0xD8}},
		{ID: 1, Title: "First", Artist: "A", Genre: domain.GenreJazz, StreamLocator: "s/1/output.m3u8"}, // duplicates allowed
	}
	if err := repo.SaveOrder(saved, 1); err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}

	tracks, current, err = repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("Expected 3 tracks, got %d", len(tracks))
	}
	if current != 1 {
		t.Errorf("Expected cursor 1, got %d", current)
	}
	if tracks[0].Title != "First" || tracks[1].Title != "Second" {
		t.Errorf("Queue order not preserved: %v", tracks)
	}
	if len(tracks[1].Thumbnail) != 2 {
		t.Errorf("Thumbnail bytes not round-tripped")
	}

	// Replacing with a shorter queue drops the old rows
	if err := repo.SaveOrder(saved[:1], 0); err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}
	tracks, current, err = repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(tracks) != 1 || current != 0 {
		t.Errorf("Expected 1 track, cursor 0, got %d, %d", len(tracks), current)
	}
}

func TestQueueRepo_StaleCursorClamped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQueueRepo(db)

	saved := []domain.Track{
		{ID: 1, Title: "Only", Genre: domain.GenrePop, StreamLocator: "s/1"},
	}
	if err := repo.SaveOrder(saved, 5); err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}

	_, current, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if current != 0 {
		t.Errorf("Expected out-of-range cursor clamped to 0, got %d", current)
	}
}

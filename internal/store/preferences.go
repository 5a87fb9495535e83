package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/camilorojas87/mixtaped/internal/domain"
)

// PreferenceRepo persists append-only preference records. Rows are inserted
// and deleted, never updated.
type PreferenceRepo struct {
	db *DB
}

func NewPreferenceRepo(db *DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

func (r *PreferenceRepo) Insert(rec *domain.PreferenceRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.InsertedAt.IsZero() {
		rec.InsertedAt = time.Now().UTC()
	}

	query := `INSERT INTO preferences (id, genre, song_id, score, immutable, inserted_at)
		VALUES (:id, :genre, :song_id, :score, :immutable, :inserted_at)`

	if _, err := r.db.NamedExec(query, rec); err != nil {
		return fmt.Errorf("failed to insert preference record: %w", err)
	}
	return nil
}

func (r *PreferenceRepo) ListByGenre(genre domain.Genre) ([]domain.PreferenceRecord, error) {
	var records []domain.PreferenceRecord
	err := r.db.Select(&records,
		`SELECT * FROM preferences WHERE genre = ?`, genre)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences for %s: %w", genre, err)
	}
	return records, nil
}

// LatestFeedback returns the most recent non-immutable record for a song, or
// nil when the song has no feedback history. The id tie-break keeps
// GetFeedback and CancelFeedback pointed at the same row when two records
// share a timestamp.
func (r *PreferenceRepo) LatestFeedback(songID int64) (*domain.PreferenceRecord, error) {
	var rec domain.PreferenceRecord
	err := r.db.Get(&rec,
		`SELECT * FROM preferences
		WHERE song_id = ? AND immutable = 0
		ORDER BY inserted_at DESC, id DESC
		LIMIT 1`, songID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback for song %d: %w", songID, err)
	}
	return &rec, nil
}

func (r *PreferenceRepo) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM preferences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete preference record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("preference record %s not found", id)
	}
	return nil
}

// DeleteAll removes every record, immutable baselines included.
func (r *PreferenceRepo) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM preferences`); err != nil {
		return fmt.Errorf("failed to delete all preference records: %w", err)
	}
	return nil
}

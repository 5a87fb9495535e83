package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/camilorojas87/mixtaped/internal/domain"
)

const stateKeyCurrentIndex = "current_index"

type queueRow struct {
	Position      int          `db:"position"`
	TrackID       int64        `db:"track_id"`
	Title         string       `db:"title"`
	Artist        string       `db:"artist"`
	Album         string       `db:"album"`
	Genre         domain.Genre `db:"genre"`
	StreamLocator string       `db:"stream_locator"`
	Thumbnail     []byte       `db:"thumbnail"`
}

// QueueRepo persists the playback queue snapshot. Saves replace the whole
// order in one transaction so a crash never leaves a half-written queue.
type QueueRepo struct {
	db *DB
}

func NewQueueRepo(db *DB) *QueueRepo {
	return &QueueRepo{db: db}
}

// LoadAll returns the persisted queue in order along with the saved cursor.
// An empty database yields an empty queue and cursor 0.
func (r *QueueRepo) LoadAll() ([]domain.Track, int, error) {
	var rows []queueRow
	err := r.db.Select(&rows, `SELECT * FROM queue_items ORDER BY position ASC`)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load queue: %w", err)
	}

	tracks := make([]domain.Track, 0, len(rows))
	for _, row := range rows {
		tracks = append(tracks, domain.Track{
			ID:            row.TrackID,
			Title:         row.Title,
			Artist:        row.Artist,
			Album:         row.Album,
			Genre:         row.Genre,
			StreamLocator: row.StreamLocator,
			Thumbnail:     row.Thumbnail,
		})
	}

	current := 0
	var value string
	err = r.db.Get(&value, `SELECT value FROM queue_state WHERE key = ?`, stateKeyCurrentIndex)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("failed to load queue cursor: %w", err)
	}
	if err == nil {
		if n, convErr := strconv.Atoi(value); convErr == nil {
			current = n
		}
	}

	// A stale cursor from an older snapshot must not escape the valid range.
	if current < 0 || current >= len(tracks) {
		current = 0
	}

	return tracks, current, nil
}

// SaveOrder replaces the persisted queue with the given snapshot.
func (r *QueueRepo) SaveOrder(tracks []domain.Track, current int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin queue save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM queue_items`); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}

	insert := `INSERT INTO queue_items (position, track_id, title, artist, album, genre, stream_locator, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, t := range tracks {
		if _, err := tx.Exec(insert, i, t.ID, t.Title, t.Artist, t.Album, t.Genre, t.StreamLocator, t.Thumbnail); err != nil {
			return fmt.Errorf("failed to save queue item %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO queue_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, stateKeyCurrentIndex, strconv.Itoa(current)); err != nil {
		return fmt.Errorf("failed to save queue cursor: %w", err)
	}

	return tx.Commit()
}

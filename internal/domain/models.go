package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaselineSongID marks a preference record that is not tied to a specific
// track (onboarding baseline records).
const BaselineSongID int64 = 0

// PreferenceRecord is a single append-only scoring event. Records are never
// updated in place; cancelling feedback deletes the row instead.
type PreferenceRecord struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Genre      Genre     `json:"genre" db:"genre"`
	SongID     int64     `json:"song_id" db:"song_id"`
	Score      float64   `json:"score" db:"score"`
	Immutable  bool      `json:"immutable" db:"immutable"`
	InsertedAt time.Time `json:"inserted_at" db:"inserted_at"`
}

// FeedbackType is the effective like/dislike state of a track.
type FeedbackType string

const (
	FeedbackLike    FeedbackType = "like"
	FeedbackDislike FeedbackType = "dislike"
	FeedbackNone    FeedbackType = "none"
)

// Track is an immutable playable item. Equality is by ID; the same track may
// legitimately appear twice in a queue.
type Track struct {
	ID            int64  `json:"id" db:"id"`
	Title         string `json:"title" db:"title"`
	Artist        string `json:"artist" db:"artist"`
	Album         string `json:"album" db:"album"`
	Genre         Genre  `json:"genre" db:"genre"`
	StreamLocator string `json:"stream_locator" db:"stream_locator"`
	Thumbnail     []byte `json:"-" db:"thumbnail"`
}

// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort        = "8080"
	DefaultDBPath      = "mixtaped.db"
	DefaultSourceURL   = "http://127.0.0.1:8000"
	DefaultHTTPTimeout = 30 * time.Second
	ImageHTTPTimeout   = 10 * time.Second
	DefaultRetryCount  = 3
	DefaultRetryBase   = 1 * time.Second
	DefaultBatchSize   = 10
	MinRequestInterval = 200 * time.Millisecond
	PositionTickPeriod = 1 * time.Second
)

// Preference scoring
const (
	BaselineScore = 10.0
	LikeScore     = 2.0
	DislikeScore  = -1.0
	ScoreFloor    = 1.0
	ScoreCeiling  = 50.0
	// FallbackScore is used when the preference store cannot be read.
	FallbackScore = 10.0
)

// Time decay buckets, in days since the record was inserted.
const (
	DecayFreshDays  = 7  // full weight
	DecayRecentDays = 14 // 0.8
	DecayAgingDays  = 28 // 0.5; older records drop to 0.3
)

const (
	DecayFresh  = 1.0
	DecayRecent = 0.8
	DecayAging  = 0.5
	DecayStale  = 0.3
)

// MIME Types
const (
	MimeTypeJSON = "application/json"
	MimeTypeJPEG = "image/jpeg"
)

// File extensions the library scanner understands.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
)

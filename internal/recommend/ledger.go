package recommend

import (
	"github.com/camilorojas87/mixtaped/internal/constants"
	"github.com/camilorojas87/mixtaped/internal/domain"
	"github.com/camilorojas87/mixtaped/internal/logger"
)

// Ledger records like/dislike actions and resolves the effective feedback of
// a track. Only the latest non-immutable record is visible or cancellable;
// older records stay in history for scoring.
type Ledger struct {
	store Store
	log   *logger.Logger
}

func NewLedger(store Store, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Default()
	}
	return &Ledger{
		store: store,
		log:   log.WithComponent("ledger"),
	}
}

// RecordAction writes one non-immutable record: +2.0 for a like, -1.0 for a
// dislike.
func (l *Ledger) RecordAction(genre domain.Genre, songID int64, isLike bool) error {
	score := constants.DislikeScore
	if isLike {
		score = constants.LikeScore
	}
	err := l.store.Insert(&domain.PreferenceRecord{
		Genre:  genre,
		SongID: songID,
		Score:  score,
	})
	if err != nil {
		return err
	}
	l.log.Debug("feedback recorded", "genre", genre, "song_id", songID, "like", isLike)
	return nil
}

// Feedback returns the effective feedback for a track: the sign of its most
// recent non-immutable record, or FeedbackNone without history.
func (l *Ledger) Feedback(songID int64) (domain.FeedbackType, error) {
	rec, err := l.store.LatestFeedback(songID)
	if err != nil {
		return domain.FeedbackNone, err
	}
	if rec == nil {
		return domain.FeedbackNone, nil
	}
	if rec.Score > 0 {
		return domain.FeedbackLike, nil
	}
	return domain.FeedbackDislike, nil
}

// CancelFeedback deletes the record Feedback would have reported. Returns
// false when the track has no feedback to cancel.
func (l *Ledger) CancelFeedback(songID int64) (bool, error) {
	rec, err := l.store.LatestFeedback(songID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	if err := l.store.Delete(rec.ID); err != nil {
		return false, err
	}
	l.log.Debug("feedback cancelled", "song_id", songID)
	return true, nil
}

// Toggle implements the caller-level contract: pressing the same action twice
// cancels it, pressing the opposite action records the new one. Returns the
// resulting effective feedback.
func (l *Ledger) Toggle(genre domain.Genre, songID int64, isLike bool) (domain.FeedbackType, error) {
	existing, err := l.Feedback(songID)
	if err != nil {
		return domain.FeedbackNone, err
	}

	requested := domain.FeedbackDislike
	if isLike {
		requested = domain.FeedbackLike
	}

	if existing == requested {
		if _, err := l.CancelFeedback(songID); err != nil {
			return existing, err
		}
		return domain.FeedbackNone, nil
	}

	if err := l.RecordAction(genre, songID, isLike); err != nil {
		return existing, err
	}
	return requested, nil
}

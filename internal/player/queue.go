package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/camilorojas87/mixtaped/internal/constants"
	"github.com/camilorojas87/mixtaped/internal/domain"
	"github.com/camilorojas87/mixtaped/internal/logger"
	"github.com/camilorojas87/mixtaped/internal/source"
)

// GenrePicker selects the genre for the next fetched track.
type GenrePicker interface {
	SelectRandomGenre() domain.Genre
}

// Persister stores the queue order and cursor across restarts. Writes are
// best effort: a failed save never blocks playback. SaveOrder runs with the
// queue lock held so snapshots land in mutation order; implementations must
// not call back into the queue.
type Persister interface {
	LoadAll() ([]domain.Track, int, error)
	SaveOrder(tracks []domain.Track, current int) error
}

// fixedGenrePicker always returns the same genre. Used when no preference
// engine is wired, e.g. in tests.
type fixedGenrePicker struct{ genre domain.Genre }

func (p fixedGenrePicker) SelectRandomGenre() domain.Genre { return p.genre }

// Queue is the playback queue state machine. All mutations go through its
// mutex; the cursor always points at a valid item while the queue is
// non-empty.
type Queue struct {
	source  source.Provider
	picker  GenrePicker
	persist Persister
	events  *Broadcaster
	log     *logger.Logger

	mu        sync.Mutex
	items     []domain.Track
	current   int
	playing   bool
	advancing bool
}

func NewQueue(provider source.Provider, picker GenrePicker, persist Persister, events *Broadcaster, log *logger.Logger) *Queue {
	if picker == nil {
		picker = fixedGenrePicker{genre: domain.DefaultGenre}
	}
	if events == nil {
		events = NewBroadcaster()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Queue{
		source:  provider,
		picker:  picker,
		persist: persist,
		events:  events,
		log:     log.WithComponent("queue"),
	}
}

// Restore loads the persisted queue and cursor. Call once at startup,
// before the queue is shared.
func (q *Queue) Restore() error {
	if q.persist == nil {
		return nil
	}
	items, current, err := q.persist.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to restore queue: %w", err)
	}

	q.mu.Lock()
	q.items = items
	q.current = current
	q.mu.Unlock()

	if len(items) > 0 {
		q.log.Info("queue restored", "tracks", len(items), "current", current)
	}
	return nil
}

// Current returns the track under the cursor, or false when the queue is
// empty.
func (q *Queue) Current() (domain.Track, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return domain.Track{}, 0, false
	}
	return q.items[q.current], q.current, true
}

// Items returns a copy of the queue in order.
func (q *Queue) Items() []domain.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.Track, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) IsPlaying() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// SetPlaying flips the play state and notifies listeners on change.
func (q *Queue) SetPlaying(playing bool) {
	q.mu.Lock()
	if q.playing == playing {
		q.mu.Unlock()
		return
	}
	q.playing = playing
	q.mu.Unlock()

	q.events.PlayStateChanged(playing)
}

// Append adds a track to the tail. Appending to an empty queue makes the
// new track current.
func (q *Queue) Append(track domain.Track) {
	q.mu.Lock()
	q.items = append(q.items, track)
	if len(q.items) == 1 {
		q.current = 0
	}
	q.saveLocked()
	items, current := q.snapshotLocked()
	q.mu.Unlock()

	q.events.QueueChanged(items, current)
}

// AppendAndFocus adds a track to the tail and moves the cursor to it.
func (q *Queue) AppendAndFocus(track domain.Track) {
	q.mu.Lock()
	q.items = append(q.items, track)
	q.current = len(q.items) - 1
	q.saveLocked()
	items, current := q.snapshotLocked()
	q.mu.Unlock()

	q.events.QueueChanged(items, current)
	q.events.TrackChanged(track, current)
}

// AddSongs fetches count tracks for genre (empty means let the preference
// engine pick per track) and appends them.
func (q *Queue) AddSongs(ctx context.Context, genre domain.Genre, count int) ([]domain.Track, error) {
	if count <= 0 {
		count = constants.DefaultBatchSize
	}
	if genre == "" {
		genre = q.picker.SelectRandomGenre()
	}

	tracks, err := q.source.FetchMany(ctx, genre, count)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch songs: %w", err)
	}

	q.mu.Lock()
	wasEmpty := len(q.items) == 0
	q.items = append(q.items, tracks...)
	if wasEmpty && len(q.items) > 0 {
		q.current = 0
	}
	q.saveLocked()
	items, current := q.snapshotLocked()
	q.mu.Unlock()

	q.events.QueueChanged(items, current)
	return tracks, nil
}

// Remove deletes the item at index. Out-of-range indexes are no-ops.
//
// Removing above the cursor leaves it alone, removing below shifts it down
// by one, and removing the current item hands the cursor to the track that
// now occupies the freed slot, or to the new last track when the tail was
// removed. Removing the only item stops playback.
func (q *Queue) Remove(index int) {
	q.mu.Lock()
	if index < 0 || index >= len(q.items) {
		q.mu.Unlock()
		return
	}

	wasCurrent := index == q.current
	q.items = append(q.items[:index], q.items[index+1:]...)

	stopped := false
	switch {
	case len(q.items) == 0:
		q.current = 0
		if q.playing {
			q.playing = false
			stopped = true
		}
	case index < q.current:
		q.current--
	case index == q.current && q.current >= len(q.items):
		q.current = len(q.items) - 1
	}
	newCurrent := wasCurrent && len(q.items) > 0
	var track domain.Track
	if newCurrent {
		track = q.items[q.current]
	}
	q.saveLocked()
	items, current := q.snapshotLocked()
	q.mu.Unlock()

	q.events.QueueChanged(items, current)
	if newCurrent {
		q.events.TrackChanged(track, current)
	}
	if stopped {
		q.events.PlayStateChanged(false)
	}
}

// Reorder moves the item at from so it ends up at index to, with everything
// in between shifting by one. to may equal the queue length, meaning move
// to the end. The cursor follows the track it pointed at. Out-of-range or
// same-index calls are no-ops.
func (q *Queue) Reorder(from, to int) {
	q.mu.Lock()
	n := len(q.items)
	if from == to || from < 0 || from >= n || to < 0 || to > n {
		q.mu.Unlock()
		return
	}

	item := q.items[from]
	q.items = append(q.items[:from], q.items[from+1:]...)
	insert := to
	if insert > len(q.items) {
		insert = len(q.items)
	}
	q.items = append(q.items[:insert], append([]domain.Track{item}, q.items[insert:]...)...)

	switch {
	case q.current == from:
		q.current = insert
	case from < q.current && q.current <= to:
		q.current--
	case to <= q.current && q.current < from:
		q.current++
	}
	q.saveLocked()
	items, current := q.snapshotLocked()
	q.mu.Unlock()

	q.events.QueueChanged(items, current)
}

// Clear empties the queue. With keepCurrent set, the current track survives
// as the sole item at index 0.
func (q *Queue) Clear(keepCurrent bool) {
	q.mu.Lock()
	stopped := false
	if keepCurrent && len(q.items) > 0 {
		q.items = []domain.Track{q.items[q.current]}
		q.current = 0
	} else {
		q.items = nil
		q.current = 0
		if q.playing {
			q.playing = false
			stopped = true
		}
	}
	q.saveLocked()
	items, current := q.snapshotLocked()
	q.mu.Unlock()

	q.events.QueueChanged(items, current)
	if stopped {
		q.events.PlayStateChanged(false)
	}
}

// PlayAt moves the cursor to index. Out-of-range indexes are no-ops.
func (q *Queue) PlayAt(index int) {
	q.mu.Lock()
	if index < 0 || index >= len(q.items) {
		q.mu.Unlock()
		return
	}
	q.current = index
	track := q.items[index]
	q.saveLocked()
	current := q.current
	q.mu.Unlock()

	q.events.TrackChanged(track, current)
}

// MoveBackward steps the cursor to the previous track. At the head it is a
// no-op and returns false.
func (q *Queue) MoveBackward() bool {
	q.mu.Lock()
	if len(q.items) == 0 || q.current == 0 {
		q.mu.Unlock()
		return false
	}
	q.current--
	track := q.items[q.current]
	q.saveLocked()
	current := q.current
	q.mu.Unlock()

	q.events.TrackChanged(track, current)
	return true
}

// Advance steps the cursor to the next track. When the cursor is already on
// the last track, exactly one fetch for a new track runs; concurrent
// advances during that fetch coalesce into no-ops. The genre for the
// fetched track comes from the preference engine unless override is set.
func (q *Queue) Advance(ctx context.Context, override domain.Genre) (*domain.Track, error) {
	q.mu.Lock()
	if q.current < len(q.items)-1 {
		q.current++
		track := q.items[q.current]
		q.saveLocked()
		current := q.current
		q.mu.Unlock()

		q.events.TrackChanged(track, current)
		return &track, nil
	}

	if q.advancing {
		q.mu.Unlock()
		return nil, nil
	}
	q.advancing = true
	q.mu.Unlock()

	genre := override
	if genre == "" {
		genre = q.picker.SelectRandomGenre()
	}
	q.log.Debug("queue exhausted, fetching", "genre", genre.String())
	track, err := q.source.FetchOne(ctx, genre)

	q.mu.Lock()
	q.advancing = false
	if err != nil {
		q.mu.Unlock()
		return nil, fmt.Errorf("failed to fetch next track: %w", err)
	}
	q.items = append(q.items, *track)
	q.current = len(q.items) - 1
	q.saveLocked()
	items, current := q.snapshotLocked()
	q.mu.Unlock()

	q.events.QueueChanged(items, current)
	q.events.TrackChanged(*track, current)
	return track, nil
}

func (q *Queue) snapshotLocked() ([]domain.Track, int) {
	out := make([]domain.Track, len(q.items))
	copy(out, q.items)
	return out, q.current
}

// saveLocked persists the current snapshot. It runs under the queue mutex so
// concurrent mutations cannot write their snapshots out of order.
func (q *Queue) saveLocked() {
	if q.persist == nil {
		return
	}
	if err := q.persist.SaveOrder(q.items, q.current); err != nil {
		q.log.Warn("failed to persist queue", "error", err)
	}
}

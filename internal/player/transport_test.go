package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/camilorojas87/mixtaped/internal/domain"
	"github.com/camilorojas87/mixtaped/internal/source"
)

// recorder captures broadcast events for assertions.
type recorder struct {
	mu         sync.Mutex
	tracks     []int
	playStates []bool
	positions  []float64
	failures   []error
}

func (r *recorder) TrackChanged(_ domain.Track, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks = append(r.tracks, index)
}

func (r *recorder) PlayStateChanged(playing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playStates = append(r.playStates, playing)
}

func (r *recorder) QueueChanged([]domain.Track, int) {}

func (r *recorder) PositionChanged(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = append(r.positions, seconds)
}

func (r *recorder) PlaybackFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func (r *recorder) positionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.positions)
}

func (r *recorder) failureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func newTestController(t *testing.T) (*Controller, *Queue, *NoopTransport, *source.MockProvider, *recorder) {
	t.Helper()
	provider := source.NewMockProvider()
	events := NewBroadcaster()
	rec := &recorder{}
	events.Subscribe(rec)

	q := NewQueue(provider, nil, nil, events, nil)
	transport := NewNoopTransport()
	c := NewController(transport, transport.Events(), q, events, nil)
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return c, q, transport, provider, rec
}

func TestController_PlayPause(t *testing.T) {
	c, q, transport, _, _ := newTestController(t)
	q.Append(mkTrack(1, "A"))

	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !q.IsPlaying() {
		t.Error("Expected playing state")
	}
	if transport.PlayCalls() != 1 {
		t.Errorf("Expected 1 transport play, got %d", transport.PlayCalls())
	}

	if err := c.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if q.IsPlaying() {
		t.Error("Expected paused state")
	}
}

func TestController_PlayOnEmptyQueueIsNoop(t *testing.T) {
	c, q, transport, _, _ := newTestController(t)

	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if q.IsPlaying() {
		t.Error("Empty queue must not enter playing state")
	}
	if transport.PlayCalls() != 0 {
		t.Errorf("Expected no transport plays, got %d", transport.PlayCalls())
	}
}

func TestController_TrackEndAdvancesAndPlays(t *testing.T) {
	c, q, transport, provider, _ := newTestController(t)
	q.Append(mkTrack(1, "A"))
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	transport.EmitEnded()

	waitFor(t, "advance after track end", func() bool { return q.Len() == 2 })
	if provider.Fetches != 1 {
		t.Errorf("Expected 1 fetch, got %d", provider.Fetches)
	}
	waitFor(t, "transport play of next track", func() bool { return transport.PlayCalls() == 2 })
	if _, index, _ := q.Current(); index != 1 {
		t.Errorf("Expected cursor at 1, got %d", index)
	}
}

func TestController_RepeatReplaysInsteadOfAdvancing(t *testing.T) {
	c, q, transport, provider, _ := newTestController(t)
	q.Append(mkTrack(1, "A"))
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	c.SetRepeat(true)

	transport.EmitEnded()

	waitFor(t, "seek to start", func() bool {
		seeks := transport.Seeks()
		return len(seeks) == 1 && seeks[0] == 0
	})
	waitFor(t, "replay", func() bool { return transport.PlayCalls() == 2 })
	if q.Len() != 1 {
		t.Errorf("Repeat must not grow the queue, got %d items", q.Len())
	}
	if provider.Fetches != 0 {
		t.Errorf("Repeat must not fetch, got %d", provider.Fetches)
	}
}

func TestController_FailureStopsWithoutAdvancing(t *testing.T) {
	c, q, transport, provider, rec := newTestController(t)
	q.Append(mkTrack(1, "A"))
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	transport.EmitFailed(errors.New("stream stalled"))

	waitFor(t, "playback stop", func() bool { return !q.IsPlaying() })
	waitFor(t, "failure event", func() bool { return rec.failureCount() == 1 })
	if q.Len() != 1 {
		t.Errorf("Failure must not advance, got %d items", q.Len())
	}
	if provider.Fetches != 0 {
		t.Errorf("Failure must not fetch, got %d", provider.Fetches)
	}
	if title := currentTitle(t, q); title != "A" {
		t.Errorf("Failing track must stay current, got %q", title)
	}
}

func TestController_AdvanceFailureStopsPlayback(t *testing.T) {
	c, q, transport, provider, rec := newTestController(t)
	q.Append(mkTrack(1, "A"))
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	provider.Fail = true

	transport.EmitEnded()

	waitFor(t, "playback stop", func() bool { return !q.IsPlaying() })
	waitFor(t, "failure event", func() bool { return rec.failureCount() == 1 })
	if q.Len() != 1 {
		t.Errorf("Failed advance must not grow the queue, got %d items", q.Len())
	}
}

func TestController_RemovingLastItemReleasesTransport(t *testing.T) {
	c, q, transport, _, _ := newTestController(t)
	q.Append(mkTrack(1, "A"))
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	q.Remove(0)

	if q.IsPlaying() {
		t.Error("Expected stopped state after removing the only item")
	}
	if transport.PauseCalls() != 1 {
		t.Errorf("Expected the transport to be paused once, got %d", transport.PauseCalls())
	}
}

func TestController_ClearReleasesTransport(t *testing.T) {
	c, q, transport, _, _ := newTestController(t)
	q.Append(mkTrack(1, "A"))
	q.Append(mkTrack(2, "B"))
	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	q.Clear(false)

	if q.IsPlaying() {
		t.Error("Expected stopped state after clearing the queue")
	}
	if transport.PauseCalls() != 1 {
		t.Errorf("Expected the transport to be paused once, got %d", transport.PauseCalls())
	}

	// A controller-driven pause afterwards must not double-release
	if err := c.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if transport.PauseCalls() != 2 {
		t.Errorf("Expected 2 pauses total, got %d", transport.PauseCalls())
	}
}

func TestController_PositionTicksFanOut(t *testing.T) {
	_, _, transport, _, rec := newTestController(t)

	transport.EmitPosition(1.0)
	transport.EmitPosition(2.0)

	waitFor(t, "position ticks", func() bool { return rec.positionCount() == 2 })
}

func TestController_NextAndPrevious(t *testing.T) {
	c, q, _, _, _ := newTestController(t)
	q.Append(mkTrack(1, "A"))
	q.Append(mkTrack(2, "B"))

	track, err := c.Next(context.Background(), "")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if track.Title != "B" {
		t.Errorf("Expected B, got %q", track.Title)
	}

	if !c.Previous() {
		t.Fatal("Expected Previous to succeed")
	}
	if title := currentTitle(t, q); title != "A" {
		t.Errorf("Expected A, got %q", title)
	}
	if c.Previous() {
		t.Error("Previous at the head must return false")
	}
}

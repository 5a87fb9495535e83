package player

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/camilorojas87/mixtaped/internal/domain"
	"github.com/camilorojas87/mixtaped/internal/logger"
)

// Transport is the audio output. Commands are fire-and-forget from the
// queue's point of view; completion and failure come back asynchronously
// through TransportEvents.
type Transport interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetRate(rate float64) error
	Close() error
}

// TransportEvents carries the transport's asynchronous signals. Ended fires
// when the current track finishes, Failed when playback breaks, Position
// periodically while playing.
type TransportEvents struct {
	Ended    <-chan struct{}
	Failed   <-chan error
	Position <-chan float64
}

// advanceTimeout bounds the fetch triggered by a track ending.
const advanceTimeout = 30 * time.Second

// Controller bridges the transport and the queue: user commands flow down
// to the transport, transport events flow up into queue transitions. A
// single goroutine consumes the event channels so transitions are ordered.
type Controller struct {
	transport Transport
	queue     *Queue
	events    *Broadcaster
	log       *logger.Logger

	repeat atomic.Bool

	// active tracks whether the transport currently holds an audio session.
	// Queue-driven stops (last item removed, queue cleared) release it.
	active atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewController(transport Transport, transportEvents TransportEvents, queue *Queue, events *Broadcaster, log *logger.Logger) *Controller {
	if events == nil {
		events = NewBroadcaster()
	}
	if log == nil {
		log = logger.Default()
	}
	c := &Controller{
		transport: transport,
		queue:     queue,
		events:    events,
		log:       log.WithComponent("controller"),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	events.Subscribe(queueStateListener{c})
	go c.run(transportEvents)
	return c
}

// queueStateListener releases the transport when the queue stops playback on
// its own, e.g. when the last item is removed or the queue is cleared.
type queueStateListener struct{ c *Controller }

func (l queueStateListener) TrackChanged(domain.Track, int)   {}
func (l queueStateListener) QueueChanged([]domain.Track, int) {}
func (l queueStateListener) PositionChanged(float64)          {}
func (l queueStateListener) PlaybackFailed(error)             {}

func (l queueStateListener) PlayStateChanged(playing bool) {
	if !playing {
		l.c.releaseTransport()
	}
}

// releaseTransport pauses the transport if it still holds a session. Stops
// initiated through the controller clear the flag first, so only
// queue-driven stops reach the transport here.
func (c *Controller) releaseTransport() {
	if !c.active.CompareAndSwap(true, false) {
		return
	}
	if err := c.transport.Pause(); err != nil {
		c.log.Warn("failed to release transport", "error", err)
	}
}

func (c *Controller) run(ev TransportEvents) {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		case <-ev.Ended:
			c.onEnded()
		case err := <-ev.Failed:
			c.onFailed(err)
		case pos := <-ev.Position:
			c.events.PositionChanged(pos)
		}
	}
}

func (c *Controller) onEnded() {
	if c.repeat.Load() {
		if err := c.transport.Seek(0); err != nil {
			c.onFailed(err)
			return
		}
		if err := c.transport.Play(); err != nil {
			c.onFailed(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), advanceTimeout)
	defer cancel()
	track, err := c.queue.Advance(ctx, "")
	if err != nil {
		c.log.Error("failed to advance after track end", "error", err)
		c.queue.SetPlaying(false)
		c.events.PlaybackFailed(err)
		return
	}
	if track == nil {
		// A concurrent advance is already in flight
		return
	}
	if err := c.transport.Play(); err != nil {
		c.onFailed(err)
	}
}

// onFailed stops playback without advancing; the failing track stays
// current so the user can retry or skip it.
func (c *Controller) onFailed(err error) {
	c.log.Error("playback failed", "error", err)
	c.active.Store(false)
	if pauseErr := c.transport.Pause(); pauseErr != nil {
		c.log.Warn("failed to pause after playback failure", "error", pauseErr)
	}
	c.queue.SetPlaying(false)
	c.events.PlaybackFailed(err)
}

// Play starts playback of the current track. Empty queue is a no-op.
func (c *Controller) Play() error {
	if _, _, ok := c.queue.Current(); !ok {
		return nil
	}
	if err := c.transport.Play(); err != nil {
		return err
	}
	c.active.Store(true)
	c.queue.SetPlaying(true)
	return nil
}

func (c *Controller) Pause() error {
	c.active.Store(false)
	if err := c.transport.Pause(); err != nil {
		return err
	}
	c.queue.SetPlaying(false)
	return nil
}

// TogglePlay flips between playing and paused.
func (c *Controller) TogglePlay() error {
	if c.queue.IsPlaying() {
		return c.Pause()
	}
	return c.Play()
}

// Next skips to the following track, fetching one when the queue is
// exhausted, and keeps the current play state.
func (c *Controller) Next(ctx context.Context, genre domain.Genre) (*domain.Track, error) {
	track, err := c.queue.Advance(ctx, genre)
	if err != nil {
		return nil, err
	}
	if track != nil && c.queue.IsPlaying() {
		if err := c.transport.Play(); err != nil {
			return track, err
		}
	}
	return track, nil
}

// Previous steps back one track when possible.
func (c *Controller) Previous() bool {
	if !c.queue.MoveBackward() {
		return false
	}
	if c.queue.IsPlaying() {
		if err := c.transport.Play(); err != nil {
			c.onFailed(err)
		}
	}
	return true
}

func (c *Controller) Seek(seconds float64) error {
	return c.transport.Seek(seconds)
}

func (c *Controller) SetRate(rate float64) error {
	return c.transport.SetRate(rate)
}

// SetRepeat toggles repeat-current mode: when set, a finished track is
// replayed instead of advancing.
func (c *Controller) SetRepeat(repeat bool) {
	c.repeat.Store(repeat)
}

func (c *Controller) Repeat() bool {
	return c.repeat.Load()
}

// Close stops the event loop and releases the transport.
func (c *Controller) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
	return c.transport.Close()
}

// NoopTransport is a Transport with no audio backend. The server runs as a
// pure state machine and clients stream directly; it also serves as the
// test double, with Emit helpers to simulate transport signals.
type NoopTransport struct {
	mu     sync.Mutex
	plays  int
	pauses int
	seeks  []float64
	rate   float64

	ended    chan struct{}
	failed   chan error
	position chan float64
}

func NewNoopTransport() *NoopTransport {
	return &NoopTransport{
		rate:     1.0,
		ended:    make(chan struct{}),
		failed:   make(chan error),
		position: make(chan float64),
	}
}

// Events exposes the signal channels in the shape Controller consumes.
func (t *NoopTransport) Events() TransportEvents {
	return TransportEvents{Ended: t.ended, Failed: t.failed, Position: t.position}
}

func (t *NoopTransport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plays++
	return nil
}

func (t *NoopTransport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pauses++
	return nil
}

func (t *NoopTransport) Seek(seconds float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seeks = append(t.seeks, seconds)
	return nil
}

func (t *NoopTransport) SetRate(rate float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rate = rate
	return nil
}

func (t *NoopTransport) Close() error { return nil }

// EmitEnded simulates the current track finishing.
func (t *NoopTransport) EmitEnded() { t.ended <- struct{}{} }

// EmitFailed simulates a playback failure.
func (t *NoopTransport) EmitFailed(err error) { t.failed <- err }

// EmitPosition simulates a periodic position tick.
func (t *NoopTransport) EmitPosition(seconds float64) { t.position <- seconds }

func (t *NoopTransport) PlayCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.plays
}

func (t *NoopTransport) PauseCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pauses
}

func (t *NoopTransport) Seeks() []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]float64, len(t.seeks))
	copy(out, t.seeks)
	return out
}

// Package player owns the playback queue state machine and the bridge to the
// audio transport.
package player

import (
	"sync"

	"github.com/camilorojas87/mixtaped/internal/domain"
)

// Listener receives playback state change notifications. Implementations
// must not block; delivery happens outside the queue lock but on the
// notifying goroutine.
type Listener interface {
	TrackChanged(track domain.Track, index int)
	PlayStateChanged(playing bool)
	QueueChanged(items []domain.Track, current int)
	PositionChanged(seconds float64)
	PlaybackFailed(err error)
}

// Broadcaster fans state changes out to subscribed listeners. It decouples
// the queue from any particular delivery mechanism.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

func (b *Broadcaster) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Broadcaster) snapshot() []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Listener, len(b.listeners))
	copy(out, b.listeners)
	return out
}

func (b *Broadcaster) TrackChanged(track domain.Track, index int) {
	for _, l := range b.snapshot() {
		l.TrackChanged(track, index)
	}
}

func (b *Broadcaster) PlayStateChanged(playing bool) {
	for _, l := range b.snapshot() {
		l.PlayStateChanged(playing)
	}
}

func (b *Broadcaster) QueueChanged(items []domain.Track, current int) {
	for _, l := range b.snapshot() {
		l.QueueChanged(items, current)
	}
}

func (b *Broadcaster) PositionChanged(seconds float64) {
	for _, l := range b.snapshot() {
		l.PositionChanged(seconds)
	}
}

func (b *Broadcaster) PlaybackFailed(err error) {
	for _, l := range b.snapshot() {
		l.PlaybackFailed(err)
	}
}

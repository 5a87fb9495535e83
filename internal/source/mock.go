package source

import (
	"context"
	"errors"
	"sync"

	"github.com/camilorojas87/mixtaped/internal/domain"
)

// MockProvider is a deterministic Provider for tests. Each fetch mints a
// track with a fresh id in the requested genre.
type MockProvider struct {
	mu     sync.Mutex
	nextID int64

	// Fail makes every fetch return an error when set.
	Fail bool
	// Fetches counts FetchOne/FetchMany calls.
	Fetches int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{nextID: 1000}
}

func (p *MockProvider) FetchOne(_ context.Context, genre domain.Genre) (*domain.Track, error) {
	tracks, err := p.mint(genre, 1)
	if err != nil {
		return nil, err
	}
	return &tracks[0], nil
}

func (p *MockProvider) FetchMany(_ context.Context, genre domain.Genre, count int) ([]domain.Track, error) {
	return p.mint(genre, count)
}

func (p *MockProvider) mint(genre domain.Genre, count int) ([]domain.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Fetches++
	if p.Fail {
		return nil, errors.New("mock fetch failure")
	}
	if genre == "" {
		genre = domain.DefaultGenre
	}

	tracks := make([]domain.Track, 0, count)
	for i := 0; i < count; i++ {
		p.nextID++
		tracks = append(tracks, domain.Track{
			ID:            p.nextID,
			Title:         "Mock Track",
			Artist:        "Mock Artist",
			Album:         "Mock Album",
			Genre:         genre,
			StreamLocator: "mock://stream",
		})
	}
	return tracks, nil
}

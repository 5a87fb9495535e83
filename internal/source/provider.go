// Package source fetches playable tracks, either from a remote song service
// or from a local tagged library.
package source

import (
	"context"

	"github.com/camilorojas87/mixtaped/internal/domain"
)

// Provider produces tracks for a genre. Both methods are fallible; network
// and scan errors propagate to the caller, which leaves its queue untouched.
type Provider interface {
	FetchOne(ctx context.Context, genre domain.Genre) (*domain.Track, error)
	FetchMany(ctx context.Context, genre domain.Genre, count int) ([]domain.Track, error)
}

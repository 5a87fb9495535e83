package domain

import "fmt"

// Genre is a closed set of musical category tokens. The string values are
// stable wire tokens: they round-trip through the database and the HTTP API.
type Genre string

const (
	GenreJazz    Genre = "Jazz"
	GenrePop     Genre = "Pop"
	GenreRock    Genre = "Rock"
	GenreClassic Genre = "Classic"
	GenreRnB     Genre = "RnB"
	GenreHiphop  Genre = "Hiphop"
)

// DefaultGenre is the fallback used when weighted selection degenerates.
const DefaultGenre = GenrePop

// genres is the canonical ordering. Weighted selection walks this slice, never
// a map, so a fixed random seed always reproduces the same pick.
var genres = []Genre{
	GenreJazz,
	GenrePop,
	GenreRock,
	GenreClassic,
	GenreRnB,
	GenreHiphop,
}

// Genres returns all genres in canonical order. Callers must not mutate the
// returned slice.
func Genres() []Genre {
	return genres
}

// ParseGenre validates an inbound genre token.
func ParseGenre(s string) (Genre, error) {
	for _, g := range genres {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown genre: %q", s)
}

func (g Genre) String() string {
	return string(g)
}

package domain

import (
	"testing"
)

func TestParseGenre(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Genre
		wantErr bool
	}{
		{"jazz", "Jazz", GenreJazz, false},
		{"pop", "Pop", GenrePop, false},
		{"rnb", "RnB", GenreRnB, false},
		{"lowercase rejected", "jazz", "", true},
		{"unknown", "Polka", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGenre(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGenre(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseGenre(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenres_StableOrder(t *testing.T) {
	first := Genres()
	second := Genres()

	if len(first) != 6 {
		t.Fatalf("expected 6 genres, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("genre order not stable at %d: %q vs %q", i, first[i], second[i])
		}
	}
	if first[0] != GenreJazz {
		t.Errorf("expected Jazz first, got %q", first[0])
	}
}

func TestFeedbackType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		feedback FeedbackType
		expected string
	}{
		{"like", FeedbackLike, "like"},
		{"dislike", FeedbackDislike, "dislike"},
		{"none", FeedbackNone, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.feedback) != tt.expected {
				t.Errorf("FeedbackType %s = %q, want %q", tt.name, tt.feedback, tt.expected)
			}
		})
	}
}

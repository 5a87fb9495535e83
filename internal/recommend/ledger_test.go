package recommend

import (
	"testing"

	"github.com/camilorojas87/mixtaped/internal/domain"
)

func TestLedger_RecordAndFeedback(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(store, nil)

	// No history
	fb, err := l.Feedback(1)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	if fb != domain.FeedbackNone {
		t.Errorf("Expected none, got %s", fb)
	}

	if err := l.RecordAction(domain.GenreJazz, 1, true); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	fb, err = l.Feedback(1)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	if fb != domain.FeedbackLike {
		t.Errorf("Expected like, got %s", fb)
	}

	if store.records[0].Score != 2.0 {
		t.Errorf("Like score = %v, want 2.0", store.records[0].Score)
	}
	if store.records[0].Immutable {
		t.Error("Feedback records must not be immutable")
	}

	if err := l.RecordAction(domain.GenreJazz, 1, false); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	fb, err = l.Feedback(1)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	if fb != domain.FeedbackDislike {
		t.Errorf("Expected dislike after newer record, got %s", fb)
	}
	if store.records[1].Score != -1.0 {
		t.Errorf("Dislike score = %v, want -1.0", store.records[1].Score)
	}
}

func TestLedger_CancelFeedback(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(store, nil)

	// Nothing to cancel
	ok, err := l.CancelFeedback(5)
	if err != nil {
		t.Fatalf("CancelFeedback failed: %v", err)
	}
	if ok {
		t.Error("Expected false cancelling without history")
	}

	if err := l.RecordAction(domain.GenrePop, 5, true); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}

	ok, err = l.CancelFeedback(5)
	if err != nil {
		t.Fatalf("CancelFeedback failed: %v", err)
	}
	if !ok {
		t.Error("Expected true cancelling existing feedback")
	}

	fb, err := l.Feedback(5)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	if fb != domain.FeedbackNone {
		t.Errorf("Expected none after cancel, got %s", fb)
	}
}

func TestLedger_Toggle(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(store, nil)

	// First like records it
	fb, err := l.Toggle(domain.GenreRock, 9, true)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if fb != domain.FeedbackLike {
		t.Errorf("Expected like, got %s", fb)
	}

	// Second like cancels it
	fb, err = l.Toggle(domain.GenreRock, 9, true)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if fb != domain.FeedbackNone {
		t.Errorf("Expected none after double like, got %s", fb)
	}
	if len(store.records) != 0 {
		t.Errorf("Expected cancelled record deleted, have %d", len(store.records))
	}

	// Like then dislike: the dislike wins, the like stays in history
	if _, err := l.Toggle(domain.GenreRock, 9, true); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	fb, err = l.Toggle(domain.GenreRock, 9, false)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if fb != domain.FeedbackDislike {
		t.Errorf("Expected dislike, got %s", fb)
	}
	if len(store.records) != 2 {
		t.Errorf("Old record must remain in history for scoring, have %d", len(store.records))
	}

	// Only the latest record is cancellable
	ok, err := l.CancelFeedback(9)
	if err != nil {
		t.Fatalf("CancelFeedback failed: %v", err)
	}
	if !ok {
		t.Error("Expected cancel to succeed")
	}
	fb, err = l.Feedback(9)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	if fb != domain.FeedbackLike {
		t.Errorf("Expected the earlier like to resurface, got %s", fb)
	}
}

package session

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRegistryExactMatchOnly(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Put(&Session{ID: "sess-1", LocationID: "loc-a", StartedAt: time.Now()})
	r.Put(&Session{ID: "sess-2", LocationID: "loc-b", StartedAt: time.Now()})

	s, err := r.Get("sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LocationID != "loc-a" {
		t.Fatalf("got location %q, want loc-a", s.LocationID)
	}

	// No fuzzy or most-recent fallback: unknown keys fail outright.
	if _, err := r.Get("sess"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for prefix key, got %v", err)
	}
	if _, err := r.Get(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty key, got %v", err)
	}
}

func TestRegistryPutReplacesAndDelete(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Put(&Session{ID: "sess-1", LocationID: "loc-a"})
	r.Put(&Session{ID: "sess-1", LocationID: "loc-b"})

	if r.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", r.Len())
	}
	s, err := r.Get("sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LocationID != "loc-b" {
		t.Fatalf("expected replacement to win, got %q", s.LocationID)
	}

	r.Delete("sess-1")
	r.Delete("sess-1") // idempotent
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
	if _, err := r.Get("sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

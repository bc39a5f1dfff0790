package percussion

import (
	"errors"
	"testing"

	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/sequencer"
)

func TestEveryTrackSpansOneBar(t *testing.T) {
	for _, name := range Names() {
		tr, err := Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		num, den := Length(tr)
		if num != den {
			t.Fatalf("%s spans %d/%d of a bar", name, num, den)
		}
	}
}

func TestLookupFallsBackToMetronome(t *testing.T) {
	tr, err := Lookup("Polka")
	if !errors.Is(err, errdefs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if tr.Name != DefaultTrack {
		t.Fatalf("fallback = %q, want %q", tr.Name, DefaultTrack)
	}
}

func TestPlayBarSchedulesWithinBar(t *testing.T) {
	s, _ := sequencer.NewScheduler(100)
	s.Advance()
	tr, _ := Lookup("Rock")
	p, err := NewPlayer(tr, DefaultVelocity)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	p.PlayBar(s)

	notes := s.TakeNotes()
	// Rock: 8 hats plus 3 kicks and 2 snares.
	if len(notes) != 13 {
		t.Fatalf("notes = %d, want 13", len(notes))
	}
	start, end := s.Marker(), s.Marker()+s.BarDuration()
	for _, n := range notes {
		if n.Voice != sequencer.VoicePercussion {
			t.Fatalf("unexpected voice %v", n.Voice)
		}
		if n.Start < start || n.End() > end {
			t.Fatalf("note %+v outside bar [%d,%d]", n, start, end)
		}
		if n.Velocity != DefaultVelocity {
			t.Fatalf("velocity = %d", n.Velocity)
		}
	}
	if s.Marker() != start {
		t.Fatalf("PlayBar must not move the marker")
	}
}

func TestNewPlayerValidates(t *testing.T) {
	tr, _ := Lookup(DefaultTrack)
	if _, err := NewPlayer(tr, 200); !errors.Is(err, errdefs.ErrInvalidParameter) {
		t.Fatalf("expected invalid velocity, got %v", err)
	}
	bad := Track{Name: "bad", Hits: []Hit{{Division: 0}}}
	if _, err := NewPlayer(bad, 100); !errors.Is(err, errdefs.ErrInvalidParameter) {
		t.Fatalf("expected invalid division, got %v", err)
	}
}

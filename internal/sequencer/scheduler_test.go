package sequencer

import (
	"errors"
	"testing"

	"github.com/cbegin/atone-go/internal/errdefs"
)

func TestSchedulerDurations(t *testing.T) {
	s, err := NewScheduler(100)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if s.BeatDuration() != 600 {
		t.Fatalf("beat = %d, want 600", s.BeatDuration())
	}
	if s.BarDuration() != 2400 {
		t.Fatalf("bar = %d, want 2400", s.BarDuration())
	}
	if s.Marker() != 0 {
		t.Fatalf("marker = %d, want 0", s.Marker())
	}
	for i := 1; i <= 3; i++ {
		s.Advance()
		if want := Tick(i) * 2400; s.Marker() != want {
			t.Fatalf("after %d advances marker = %d, want %d", i, s.Marker(), want)
		}
	}
}

func TestSchedulerRejectsBadTempo(t *testing.T) {
	for _, bpm := range []int{0, -1, MaxBPM + 1} {
		if _, err := NewScheduler(bpm); !errors.Is(err, errdefs.ErrInvalidParameter) {
			t.Fatalf("bpm %d: expected invalid parameter, got %v", bpm, err)
		}
	}
}

func TestSchedulerDrainIsDeferredAndOrdered(t *testing.T) {
	s, _ := NewScheduler(120)
	s.NoteOn(VoiceMelody, 60, 500, 80)
	s.NoteOff(VoiceMelody, 60, 1000)
	s.NoteOn(VoiceBass, 36, 0, 90)
	s.NoteOn(VoiceMelody, 62, 1000, 80)
	s.Self(2000)

	if got := s.Drain(0); len(got) != 1 || got[0].Voice != VoiceBass {
		t.Fatalf("drain(0) = %+v, want the bass note only", got)
	}
	if got := s.Drain(499); got != nil {
		t.Fatalf("drain(499) = %+v, want nothing", got)
	}
	got := s.Drain(1000)
	if len(got) != 3 {
		t.Fatalf("drain(1000) returned %d events, want 3", len(got))
	}
	// Same voice, same tick: scheduling order is kept (off before the next on).
	if got[1].Kind != EventNoteOff || got[2].Kind != EventNoteOn || got[2].Pitch != 62 {
		t.Fatalf("unexpected order at tick 1000: %+v", got)
	}
	next, ok := s.Next()
	if !ok || next != 2000 {
		t.Fatalf("next = %d,%v want 2000,true", next, ok)
	}
	rest := s.DrainAll()
	if len(rest) != 1 || rest[0].Kind != EventTimer {
		t.Fatalf("remaining = %+v, want one timer", rest)
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d after DrainAll", s.Pending())
	}
}

func TestSchedulerPlayRecordsNotes(t *testing.T) {
	s, _ := NewScheduler(60)
	s.Play(VoiceLead, 72, 100, 250, 500)
	s.Play(VoiceLead, 74, 100, 750, 250)
	notes := s.TakeNotes()
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(notes))
	}
	if notes[0].End() != 750 || notes[1].Start != 750 {
		t.Fatalf("unexpected notes: %+v", notes)
	}
	if s.TakeNotes() != nil {
		t.Fatalf("TakeNotes should reset")
	}
	if s.Pending() != 4 {
		t.Fatalf("pending = %d, want 4", s.Pending())
	}
	evs := s.DrainAll()
	for i := 1; i < len(evs); i++ {
		if evs[i].Tick < evs[i-1].Tick {
			t.Fatalf("events out of order: %+v", evs)
		}
	}
}

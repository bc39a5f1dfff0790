package sequencer

import "github.com/cbegin/atone-go/internal/errdefs"

// MaxBPM bounds the tempo so a beat never drops below 60 ticks.
const MaxBPM = 1000

// Scheduler owns the time marker and the queue of deferred events. It is not
// safe for concurrent use.
type Scheduler struct {
	bpm     int
	beat    Tick
	marker  Tick
	queue   []Event
	notes   []Note
	pending int // events appended since the queue was last sorted
}

// NewScheduler creates a scheduler with the marker at tick zero.
func NewScheduler(bpm int) (*Scheduler, error) {
	if bpm < 1 || bpm > MaxBPM {
		return nil, errdefs.Invalid("tempo %d bpm out of range 1..%d", bpm, MaxBPM)
	}
	return &Scheduler{
		bpm:  bpm,
		beat: Tick(TicksPerMinute / bpm),
	}, nil
}

// BPM returns the configured tempo.
func (s *Scheduler) BPM() int { return s.bpm }

// BeatDuration returns the length of one beat in ticks.
func (s *Scheduler) BeatDuration() Tick { return s.beat }

// BarDuration returns the length of one bar in ticks.
func (s *Scheduler) BarDuration() Tick { return BeatsPerBar * s.beat }

// Marker returns the start tick of the bar being generated.
func (s *Scheduler) Marker() Tick { return s.marker }

// Advance moves the marker forward by one bar.
func (s *Scheduler) Advance() { s.marker += s.BarDuration() }

// NoteOn schedules a note-on at tick at.
func (s *Scheduler) NoteOn(v Voice, pitch int, at Tick, velocity int) {
	s.push(Event{Kind: EventNoteOn, Tick: at, Voice: v, Pitch: pitch, Velocity: velocity})
}

// NoteOff schedules a note-off at tick at.
func (s *Scheduler) NoteOff(v Voice, pitch int, at Tick) {
	s.push(Event{Kind: EventNoteOff, Tick: at, Voice: v, Pitch: pitch})
}

// Self schedules a timer event that re-arms bar generation.
func (s *Scheduler) Self(at Tick) {
	s.push(Event{Kind: EventTimer, Tick: at})
}

// Program schedules an instrument selection for a voice.
func (s *Scheduler) Program(v Voice, instrument string, at Tick) {
	s.push(Event{Kind: EventProgram, Tick: at, Voice: v, Instrument: instrument})
}

// Play schedules a note-on/note-off pair and records the note.
func (s *Scheduler) Play(v Voice, pitch, velocity int, start, dur Tick) {
	s.NoteOn(v, pitch, start, velocity)
	s.NoteOff(v, pitch, start+dur)
	s.notes = append(s.notes, Note{Voice: v, Pitch: pitch, Velocity: velocity, Start: start, Duration: dur})
}

// TakeNotes returns the notes played since the previous call.
func (s *Scheduler) TakeNotes() []Note {
	out := s.notes
	s.notes = nil
	return out
}

// Pending returns the number of queued events.
func (s *Scheduler) Pending() int { return len(s.queue) }

// Next returns the tick of the earliest queued event.
func (s *Scheduler) Next() (Tick, bool) {
	s.sort()
	if len(s.queue) == 0 {
		return 0, false
	}
	return s.queue[0].Tick, true
}

// Drain removes and returns every queued event with Tick <= until, in tick
// order. Events sharing a tick come out in the order they were scheduled.
func (s *Scheduler) Drain(until Tick) []Event {
	s.sort()
	n := 0
	for n < len(s.queue) && s.queue[n].Tick <= until {
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]Event, n)
	copy(out, s.queue[:n])
	s.queue = append(s.queue[:0], s.queue[n:]...)
	return out
}

// DrainAll removes and returns every queued event.
func (s *Scheduler) DrainAll() []Event {
	s.sort()
	out := s.queue
	s.queue = nil
	return out
}

func (s *Scheduler) push(ev Event) {
	s.queue = append(s.queue, ev)
	s.pending++
}

// sort restores tick order. Insertion sort is stable and the queue is nearly
// sorted because engines schedule forward in time.
func (s *Scheduler) sort() {
	if s.pending == 0 {
		return
	}
	s.pending = 0
	for i := 1; i < len(s.queue); i++ {
		key := s.queue[i]
		k := i - 1
		for k >= 0 && s.queue[k].Tick > key.Tick {
			s.queue[k+1] = s.queue[k]
			k--
		}
		s.queue[k+1] = key
	}
}

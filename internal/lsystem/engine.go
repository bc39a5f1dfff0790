package lsystem

import (
	"github.com/pkg/errors"

	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/scale"
	"github.com/cbegin/atone-go/internal/sequencer"
)

// UnitsPerBar is the bar length in eighth notes.
const UnitsPerBar = 8

// Engine streams an interpreted grammar one bar at a time on the melody
// voice. Once the sequence runs out it stays exhausted.
type Engine struct {
	symbols  string
	notes    []Note
	velocity int
	pos      int // next entry to play
	carry    int // units of the previous entry that spill into this bar
	done     bool
}

// NewEngine rewrites and interprets g against the note map.
func NewEngine(g Grammar, capacity int, notes scale.NoteMap, velocity int) (*Engine, error) {
	if len(notes) == 0 {
		return nil, errdefs.Invalid("empty note map")
	}
	if velocity < 0 || velocity > 127 {
		return nil, errdefs.Invalid("velocity %d out of range 0..127", velocity)
	}
	s, err := Rewrite(g, capacity)
	if err != nil {
		return nil, err
	}
	return &Engine{
		symbols:  s,
		notes:    Interpret(s, notes),
		velocity: velocity,
	}, nil
}

// Symbols returns the rewritten string.
func (e *Engine) Symbols() string { return e.symbols }

// Notes returns the interpreted sequence.
func (e *Engine) Notes() []Note { return e.notes }

// Position returns the index of the next entry to be played.
func (e *Engine) Position() int { return e.pos }

// Exhausted reports whether playback reached the end of the sequence.
func (e *Engine) Exhausted() bool { return e.done }

// PlayBar plays entries from the marker until eight units are filled. An
// entry longer than the space left in the bar keeps sounding and its excess
// delays the next bar. It returns ErrSequenceExhausted for the bar in which
// the sequence ran out and for every bar after it.
func (e *Engine) PlayBar(s *sequencer.Scheduler) error {
	if e.done {
		return errors.Wrap(errdefs.ErrSequenceExhausted, "grammar")
	}
	bar := s.BarDuration()
	filled := e.carry
	at := s.Marker() + unitTicks(bar, filled)
	for filled < UnitsPerBar {
		if e.pos >= len(e.notes) {
			e.done = true
			return errors.Wrapf(errdefs.ErrSequenceExhausted, "grammar ended after %d entries", len(e.notes))
		}
		n := e.notes[e.pos]
		e.pos++
		dur := unitTicks(bar, n.Units)
		if !n.Rest {
			s.Play(sequencer.VoiceMelody, n.Pitch, e.velocity, at, dur)
		}
		at += dur
		filled += n.Units
	}
	e.carry = filled - UnitsPerBar
	return nil
}

func unitTicks(bar sequencer.Tick, units int) sequencer.Tick {
	return bar * sequencer.Tick(units) / UnitsPerBar
}

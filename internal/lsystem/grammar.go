// Package lsystem rewrites a two-rule grammar into a symbol string and plays
// the string back as a melody, one bar at a time.
package lsystem

import (
	"github.com/pkg/errors"

	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/scale"
)

const (
	// MaxGenerations bounds the number of rewrite rounds.
	MaxGenerations = 64
	// DefaultCapacity is the rewrite buffer size in symbols.
	DefaultCapacity = 1 << 16
	// MaxUnits caps the duration multiplier at four bars of eighth notes.
	MaxUnits = 32
)

// Rule replaces every Trigger symbol with Replacement. A zero Trigger
// disables the rule.
type Rule struct {
	Trigger     rune
	Replacement string
}

// Grammar is an axiom and two rewrite rules applied for Generations rounds.
type Grammar struct {
	Axiom       string
	Rules       [2]Rule
	Generations int
}

// Rewrite expands g.Axiom. The first matching rule wins when both rules
// share a trigger. It fails with ErrCapacityExceeded as soon as a generation
// would hold more than capacity symbols.
func Rewrite(g Grammar, capacity int) (string, error) {
	if capacity < 1 {
		return "", errdefs.Invalid("rewrite capacity %d must be positive", capacity)
	}
	if g.Generations < 0 || g.Generations > MaxGenerations {
		return "", errdefs.Invalid("generations %d out of range 0..%d", g.Generations, MaxGenerations)
	}
	cur := []rune(g.Axiom)
	if len(cur) > capacity {
		return "", errors.Wrapf(errdefs.ErrCapacityExceeded, "axiom has %d symbols, capacity %d", len(cur), capacity)
	}
	var repl [2][]rune
	for i, r := range g.Rules {
		repl[i] = []rune(r.Replacement)
	}

	for gen := 1; gen <= g.Generations; gen++ {
		next := make([]rune, 0, len(cur))
		changed := false
		for _, sym := range cur {
			add := []rune{sym}
			for i, r := range g.Rules {
				if r.Trigger != 0 && r.Trigger == sym {
					add = repl[i]
					changed = true
					break
				}
			}
			if len(next)+len(add) > capacity {
				return "", errors.Wrapf(errdefs.ErrCapacityExceeded, "generation %d exceeds %d symbols", gen, capacity)
			}
			next = append(next, add...)
		}
		cur = next
		if !changed {
			break
		}
	}
	return string(cur), nil
}

// Note is one interpreted entry: a pitch or a rest lasting Units eighth notes.
type Note struct {
	Pitch int
	Rest  bool
	Units int
}

// Interpret walks s with a pitch cursor starting at the note map center and a
// duration multiplier starting at one.
//
//	F  double the multiplier, up to MaxUnits
//	p  cursor up one index
//	m  cursor down one index
//	{  emit a note at the cursor
//	}  reset cursor and multiplier
//	X  emit a rest
//
// Any other symbol is structural and ignored.
func Interpret(s string, notes scale.NoteMap) []Note {
	if len(notes) == 0 {
		return nil
	}
	cursor, mult := notes.Center(), 1
	var out []Note
	for _, sym := range s {
		switch sym {
		case 'F':
			mult = min(mult*2, MaxUnits)
		case 'p':
			cursor = scale.Fold(cursor+1, len(notes))
		case 'm':
			cursor = scale.Fold(cursor-1, len(notes))
		case '{':
			out = append(out, Note{Pitch: notes[cursor], Units: mult})
		case '}':
			cursor, mult = notes.Center(), 1
		case 'X':
			out = append(out, Note{Rest: true, Units: mult})
		}
	}
	return out
}

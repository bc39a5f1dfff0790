package automaton

import (
	"strings"

	"github.com/cbegin/atone-go/internal/errdefs"
)

// Boundary selects how neighbours past either end of the row are read.
type Boundary int

const (
	// BoundaryCyclic wraps the row into a ring.
	BoundaryCyclic Boundary = iota
	// BoundaryInfinite replaces outside cells with a coin flip biased by the
	// rule's density.
	BoundaryInfinite
)

// BassStrategy derives the bass line from the slots.
type BassStrategy int

const (
	BassLowestNotes BassStrategy = iota
	BassLowerEighth
	BassNone
)

// ChordStrategy derives the chord voice from the slots.
type ChordStrategy int

const (
	ChordEighth ChordStrategy = iota
	ChordWhole
	ChordNone
)

// LeadStrategy derives the lead line from the slots.
type LeadStrategy int

const (
	LeadUpperEighth LeadStrategy = iota
	LeadLowerEighth
	LeadUpperWhole
	LeadNone
)

var (
	boundaryNames = []string{"cyclic", "infinite"}
	bassNames     = []string{"lowest_notes", "lower_eighth", "none"}
	chordNames    = []string{"eighth", "whole", "none"}
	leadNames     = []string{"upper_eighth", "lower_eighth", "upper_whole", "none"}
)

func (b Boundary) String() string      { return nameOf(boundaryNames, int(b)) }
func (b BassStrategy) String() string  { return nameOf(bassNames, int(b)) }
func (c ChordStrategy) String() string { return nameOf(chordNames, int(c)) }
func (l LeadStrategy) String() string  { return nameOf(leadNames, int(l)) }

// ParseBoundary maps a name to a Boundary. Unknown names return
// BoundaryCyclic with an ErrConfiguration.
func ParseBoundary(name string) (Boundary, error) {
	i, err := lookup(boundaryNames, name, "boundary")
	return Boundary(i), err
}

// ParseBass maps a name to a BassStrategy, defaulting to lowest_notes.
func ParseBass(name string) (BassStrategy, error) {
	i, err := lookup(bassNames, name, "bass strategy")
	return BassStrategy(i), err
}

// ParseChords maps a name to a ChordStrategy, defaulting to eighth.
func ParseChords(name string) (ChordStrategy, error) {
	i, err := lookup(chordNames, name, "chord strategy")
	return ChordStrategy(i), err
}

// ParseLead maps a name to a LeadStrategy, defaulting to upper_eighth.
func ParseLead(name string) (LeadStrategy, error) {
	i, err := lookup(leadNames, name, "lead strategy")
	return LeadStrategy(i), err
}

// BoundaryNames, BassNames, ChordNames and LeadNames list the accepted names.
func BoundaryNames() []string { return append([]string(nil), boundaryNames...) }
func BassNames() []string     { return append([]string(nil), bassNames...) }
func ChordNames() []string    { return append([]string(nil), chordNames...) }
func LeadNames() []string     { return append([]string(nil), leadNames...) }

// lookup returns the index of name, or 0 (the default) and an
// ErrConfiguration.
func lookup(names []string, name, what string) (int, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, n := range names {
		if n == key {
			return i, nil
		}
	}
	return 0, errdefs.Configuration("unknown %s %q, using %s", what, name, names[0])
}

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}

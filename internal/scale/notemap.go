package scale

import "github.com/cbegin/atone-go/internal/errdefs"

// MaxHeight bounds a note map to the MIDI key range.
const MaxHeight = 128

// NoteMap is a table of absolute MIDI pitches, lowest first. Index Center()
// holds the scale root.
type NoteMap []int

// NewNoteMap tiles one octave of s across height entries, placing degree 0
// at index height/2 and stepping ±12 semitones per octave.
func NewNoteMap(s Scale, height int) (NoteMap, error) {
	if height < 1 || height > MaxHeight {
		return nil, errdefs.Invalid("note map height %d out of range 1..%d", height, MaxHeight)
	}
	steps := s.Intervals()
	n := len(steps)
	m := make(NoteMap, height)
	for i := range m {
		degree := i - height/2
		octave := floorDiv(degree, n)
		pitch := s.Root + octave*12 + steps[Wrap(degree, n)]
		m[i] = clampPitch(pitch)
	}
	return m, nil
}

// Center returns the index of the scale root.
func (m NoteMap) Center() int { return len(m) / 2 }

// At returns the pitch at i after wrapping i into the table.
func (m NoteMap) At(i int) int {
	return m[Wrap(i, len(m))]
}

// Wrap reduces i into [0, n) with floored modulo, so Wrap(-1, n) == n-1.
// n must be positive.
func Wrap(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// Fold brings an index that stepped past either end of a table of size n
// back by n/2, keeping it in the same half of the table it left from.
// For n == 1 the result is always 0.
func Fold(i, n int) int {
	half := n / 2
	if half == 0 {
		return 0
	}
	for i >= n {
		i -= half
	}
	for i < 0 {
		i += half
	}
	return i
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func clampPitch(p int) int {
	if p < 0 {
		return 0
	}
	if p > 127 {
		return 127
	}
	return p
}

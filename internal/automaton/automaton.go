// Package automaton runs a one-dimensional cellular automaton over 32 cells
// and reads bass, chord and lead voices out of a window of its rows.
package automaton

import (
	"math/bits"
	"math/rand/v2"

	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/scale"
)

const (
	// Cells is the row width.
	Cells = 32
	// Slots is the number of generations played per bar, one per eighth note.
	Slots = 8
	// MaxNeighbors bounds the neighbourhood so rule tables stay at 64 entries.
	MaxNeighbors = 6
)

// DecodeNeighborhood turns a mask into neighbour offsets. Bit 0 is the cell
// itself, odd bits k reach -(k+1)/2 and even bits k reach +k/2. Offsets are
// returned highest first, so mask 7 gives {+1, 0, -1} and rule numbers follow
// the usual elementary numbering.
func DecodeNeighborhood(mask uint32) ([]int, error) {
	n := bits.OnesCount32(mask)
	if n == 0 || n > MaxNeighbors {
		return nil, errdefs.Invalid("neighborhood mask %#x has %d cells, want 1..%d", mask, n, MaxNeighbors)
	}
	offsets := make([]int, 0, n)
	for k := 0; k < 32; k++ {
		if mask&(1<<k) == 0 {
			continue
		}
		d := (k + 1) / 2
		if k%2 == 1 {
			d = -d
		}
		offsets = append(offsets, d)
	}
	// insertion sort, descending
	for i := 1; i < len(offsets); i++ {
		for j := i; j > 0 && offsets[j] > offsets[j-1]; j-- {
			offsets[j], offsets[j-1] = offsets[j-1], offsets[j]
		}
	}
	return offsets, nil
}

// DecodeRule expands rule number n into a table of 2^k outputs; entry i is
// bit i of n. Bits above the table are ignored, so rule 300 over three
// neighbours is rule 44.
func DecodeRule(n uint64, k int) ([]uint8, error) {
	if k < 1 || k > MaxNeighbors {
		return nil, errdefs.Invalid("neighborhood size %d out of range 1..%d", k, MaxNeighbors)
	}
	size := 1 << k
	table := make([]uint8, size)
	for i := range table {
		table[i] = uint8((n >> i) & 1)
	}
	return table, nil
}

// Options configures an Engine.
type Options struct {
	Rule         uint64
	Neighborhood uint32
	Boundary     Boundary
	Bass         BassStrategy
	Chords       ChordStrategy
	Lead         LeadStrategy
	Velocity     int
}

// Engine holds the automaton row and the per-voice cursors.
type Engine struct {
	opts    Options
	offsets []int
	rule    []uint8
	density float64 // mean of the rule table
	notes   scale.NoteMap
	height  int
	cells   uint32
	slots   [Slots]uint32

	lastBass  int
	lastChord int
	lastLead  int
}

// NewEngine decodes the rule and seeds the row from r. The note map length is
// the window height and must be 1..32.
func NewEngine(o Options, notes scale.NoteMap, r *rand.Rand) (*Engine, error) {
	h := len(notes)
	if h < 1 || h > Cells {
		return nil, errdefs.Invalid("automaton height %d out of range 1..%d", h, Cells)
	}
	if o.Velocity < 0 || o.Velocity > 127 {
		return nil, errdefs.Invalid("velocity %d out of range 0..127", o.Velocity)
	}
	offsets, err := DecodeNeighborhood(o.Neighborhood)
	if err != nil {
		return nil, err
	}
	rule, err := DecodeRule(o.Rule, len(offsets))
	if err != nil {
		return nil, err
	}
	on := 0
	for _, v := range rule {
		on += int(v)
	}
	return &Engine{
		opts:      o,
		offsets:   offsets,
		rule:      rule,
		density:   float64(on) / float64(len(rule)),
		notes:     notes,
		height:    h,
		cells:     r.Uint32(),
		lastBass:  h / 6,
		lastChord: -1,
		lastLead:  h / 2,
	}, nil
}

// Cells returns the current row, bit i being cell i.
func (e *Engine) Cells() uint32 { return e.cells }

// SetCells replaces the current row.
func (e *Engine) SetCells(c uint32) { e.cells = c }

// Slots returns the windows captured by the last PlayBar. Bit j of a slot
// is note map index j.
func (e *Engine) Slots() [Slots]uint32 { return e.slots }

// Height returns the window height.
func (e *Engine) Height() int { return e.height }

// Offsets returns the decoded neighbour offsets.
func (e *Engine) Offsets() []int { return e.offsets }

// Cursors returns the last bass index, chord root and lead index; the chord
// root is -1 before the first chord.
func (e *Engine) Cursors() (bass, chord, lead int) {
	return e.lastBass, e.lastChord, e.lastLead
}

// Step advances the row by one generation.
func (e *Engine) Step(r *rand.Rand) {
	var next uint32
	for i := 0; i < Cells; i++ {
		idx := 0
		for j, off := range e.offsets {
			idx |= int(e.cell(i+off, r)) << j
		}
		next |= uint32(e.rule[idx]) << i
	}
	e.cells = next
}

func (e *Engine) cell(i int, r *rand.Rand) uint32 {
	if e.opts.Boundary == BoundaryInfinite && (i < 0 || i >= Cells) {
		if r.Float64() < e.density {
			return 1
		}
		return 0
	}
	return (e.cells >> scale.Wrap(i, Cells)) & 1
}

// window returns the centred height cells of the row.
func (e *Engine) window() uint32 {
	start := (Cells - e.height) / 2
	mask := uint32(uint64(1)<<e.height - 1)
	return (e.cells >> start) & mask
}

func active(slot uint32, i int) uint32 { return (slot >> i) & 1 }

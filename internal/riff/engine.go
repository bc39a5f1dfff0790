// Package riff stitches short melodic templates into bars, thinning them out
// according to an energy curve.
package riff

import (
	"math"
	"math/rand/v2"

	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/scale"
	"github.com/cbegin/atone-go/internal/sequencer"
)

// MaxBars bounds the energy arc length.
const MaxBars = 8

// candidates is how many riffs are drawn when looking for a smooth join.
const candidates = 3

// repeatDistance replaces a zero pitch distance so the same note is not
// favoured across a join.
const repeatDistance = 6

// Catalog returns the named riff catalog. Unknown names return the classic
// catalog with an ErrConfiguration.
func Catalog(name string) ([]Riff, error) {
	if riffs, ok := catalogs[name]; ok {
		return riffs, nil
	}
	return catalogs[DefaultCatalog], errdefs.Configuration("unknown riff catalog %q", name)
}

// BarInfo describes the choices made for one bar.
type BarInfo struct {
	RiffsPerBar int
	Energy      int
	Riffs       []int
}

// Engine plays riffs on the melody voice.
type Engine struct {
	riffs    []Riff
	notes    scale.NoteMap
	numBars  int
	velocity int
	lastNote int // -1 until the first note sounds
}

// NewEngine creates a riff engine over a catalog and note map.
func NewEngine(riffs []Riff, notes scale.NoteMap, numBars, velocity int) (*Engine, error) {
	if len(riffs) == 0 {
		return nil, errdefs.Invalid("empty riff catalog")
	}
	for i, rf := range riffs {
		if !rf[0].Sounding() {
			return nil, errdefs.Invalid("riff %d does not start on a note", i)
		}
	}
	if len(notes) == 0 {
		return nil, errdefs.Invalid("empty note map")
	}
	if numBars < 1 || numBars > MaxBars {
		return nil, errdefs.Invalid("numbars %d out of range 1..%d", numBars, MaxBars)
	}
	if velocity < 0 || velocity > 127 {
		return nil, errdefs.Invalid("velocity %d out of range 0..127", velocity)
	}
	return &Engine{riffs: riffs, notes: notes, numBars: numBars, velocity: velocity, lastNote: -1}, nil
}

// LastNote returns the last sounded pitch, or -1 before the first note.
func (e *Engine) LastNote() int { return e.lastNote }

// EnergyCurve maps bar i of numbars to a 0-100 energy: a falling ramp over
// the first third, a plateau of 70, then a rising ramp.
func EnergyCurve(i, numbars int) int {
	switch {
	case 3*i < numbars:
		return 100 - (90*i)/numbars
	case 3*i > 2*numbars:
		return 40 + (90*i)/numbars
	default:
		return 70
	}
}

// PlayBar schedules one bar of riffs starting at the scheduler's marker. It
// does not move the marker.
func (e *Engine) PlayBar(s *sequencer.Scheduler, r *rand.Rand) BarInfo {
	tempo := 1
	if tempo > r.IntN(3) {
		tempo--
	} else if tempo < r.IntN(3) {
		tempo++
	}
	rpb := 1 << (tempo % 3)
	noteDur := s.BarDuration() / sequencer.Tick(NPR*rpb)
	energy := EnergyCurve(r.IntN(e.numBars), e.numBars)

	info := BarInfo{RiffsPerBar: rpb, Energy: energy}
	at := s.Marker()
	for i := 0; i < rpb; i++ {
		idx := e.pickRiff(r)
		info.Riffs = append(info.Riffs, idx)
		at = e.playRiff(s, r, e.riffs[idx], energy, noteDur, at)
	}
	return info
}

// pickRiff draws candidates and keeps the one whose first note lands
// closest to the previous bar's last note.
func (e *Engine) pickRiff(r *rand.Rand) int {
	best, bestDist := 0, math.MaxInt
	for i := 0; i < candidates; i++ {
		idx := r.IntN(len(e.riffs))
		if e.lastNote < 0 {
			return idx
		}
		d := e.distance(idx)
		if d < bestDist {
			best, bestDist = idx, d
		}
	}
	return best
}

func (e *Engine) distance(idx int) int {
	d := e.lastNote - e.pitch(e.riffs[idx][0])
	if d < 0 {
		d = -d
	}
	if d == 0 {
		d = repeatDistance
	}
	return d
}

// playRiff walks one riff from tick at and returns the tick after it.
// Sounding steps may be knocked out into a hold or a rest; holds and
// repeated pitches lengthen the pending note.
func (e *Engine) playRiff(s *sequencer.Scheduler, r *rand.Rand, rf Riff, energy int, noteDur, at sequencer.Tick) sequencer.Tick {
	pending, run := Rest, 0
	flush := func() {
		dur := sequencer.Tick(run) * noteDur
		if pending.Sounding() && run > 0 {
			p := e.pitch(pending)
			s.Play(sequencer.VoiceMelody, p, e.velocity, at, dur)
			e.lastNote = p
		}
		at += dur
	}
	for i, next := range rf {
		if next.Sounding() && r.IntN(100) >= energy+BeatImportance[i] {
			if r.IntN(2) == 0 {
				next = Hold
			} else {
				next = Rest
			}
		}
		if next == Hold || (next.Sounding() && next == pending) {
			run++
			continue
		}
		flush()
		pending, run = next, 1
	}
	flush()
	return at
}

func (e *Engine) pitch(st Step) int {
	return e.notes.At(e.notes.Center() + int(st))
}

package automaton

import (
	"math/rand/v2"

	"github.com/cbegin/atone-go/internal/sequencer"
)

// searchRadius is how far the bass and lead look from their previous note.
const searchRadius = 3

// BarInfo reports the indices chosen per slot; -1 means silent.
type BarInfo struct {
	Bass   [Slots]int
	Chords [Slots]int
	Lead   [Slots]int
}

// PlayBar runs Slots generations from the marker and schedules the derived
// voices as eighth notes. It does not move the marker.
func (e *Engine) PlayBar(s *sequencer.Scheduler, r *rand.Rand) BarInfo {
	for i := range e.slots {
		e.Step(r)
		e.slots[i] = e.window()
	}
	slot := s.BeatDuration() / 2
	return BarInfo{
		Bass:   e.playBass(s, r, slot),
		Chords: e.playChords(s, r, slot),
		Lead:   e.playLead(s, r, slot),
	}
}

func silent() (out [Slots]int) {
	for i := range out {
		out[i] = -1
	}
	return out
}

func (e *Engine) playBass(s *sequencer.Scheduler, r *rand.Rand, slot sequencer.Tick) [Slots]int {
	picks := silent()
	top := e.height / 3
	vel := e.opts.Velocity * 3 / 4
	for i, cells := range e.slots {
		idx := -1
		switch e.opts.Bass {
		case BassLowestNotes:
			for j := 0; j < top; j++ {
				if active(cells, j) == 1 {
					idx = j
					break
				}
			}
		case BassLowerEighth:
			idx = e.weightedPick(r, cells, e.lastBass, 0, top, func(j int) uint32 { return uint32(2*j + 1) })
		}
		if idx < 0 {
			continue
		}
		picks[i] = idx
		e.lastBass = idx
		s.Play(sequencer.VoiceBass, e.notes[idx], vel, s.Marker()+sequencer.Tick(i)*slot, slot)
	}
	return picks
}

// chordRoot returns the root of the strongest triad i, i+2, i+4 in the
// middle third of cells, or -1.
func (e *Engine) chordRoot(r *rand.Rand, cells uint32) int {
	best, root := uint32(0), -1
	for i := e.height / 3; i < 2*e.height/3 && i+4 < e.height; i++ {
		hit := active(cells, i) & active(cells, i+2) & active(cells, i+4)
		w := (r.Uint32()%uint32(2*i+1) + 1) * hit
		if w > best {
			best, root = w, i
		}
	}
	return root
}

func (e *Engine) playChords(s *sequencer.Scheduler, r *rand.Rand, slot sequencer.Tick) [Slots]int {
	picks := silent()
	if e.opts.Chords == ChordNone {
		return picks
	}
	for i, cells := range e.slots {
		picks[i] = e.chordRoot(r, cells)
	}
	vel := e.opts.Velocity * 2 / 3
	play := func(root, from, n int) {
		at := s.Marker() + sequencer.Tick(from)*slot
		for _, d := range []int{0, 2, 4} {
			s.Play(sequencer.VoiceChords, e.notes[root+d], vel, at, sequencer.Tick(n)*slot)
		}
		e.lastChord = root
	}
	for i := 0; i < Slots; i++ {
		root := picks[i]
		if root < 0 {
			continue
		}
		n := 1
		if e.opts.Chords == ChordWhole {
			for i+n < Slots && picks[i+n] == root {
				n++
			}
		}
		play(root, i, n)
		i += n - 1
	}
	return picks
}

func (e *Engine) playLead(s *sequencer.Scheduler, r *rand.Rand, slot sequencer.Tick) [Slots]int {
	picks := silent()
	h := e.height
	var lo, hi int
	var mod func(int) uint32
	switch e.opts.Lead {
	case LeadUpperEighth:
		lo, hi = h/3, h
		mod = func(j int) uint32 { return uint32(2*j + 1) }
	case LeadLowerEighth:
		lo, hi = 0, 2*h/3
		mod = func(j int) uint32 { return uint32(5*j + 1) }
	case LeadUpperWhole:
		lo, hi = h/3, h
		mod = func(j int) uint32 { return uint32(5*abs(h-j) + 1) }
	default:
		return picks
	}
	for i, cells := range e.slots {
		if idx := e.weightedPick(r, cells, e.lastLead, lo, hi, mod); idx >= 0 {
			picks[i] = idx
			e.lastLead = idx
		}
	}
	for i := 0; i < Slots; i++ {
		idx := picks[i]
		if idx < 0 {
			continue
		}
		n := 1
		if e.opts.Lead == LeadUpperWhole {
			for i+n < Slots && picks[i+n] == idx {
				n++
			}
		}
		s.Play(sequencer.VoiceLead, e.notes[idx], e.opts.Velocity, s.Marker()+sequencer.Tick(i)*slot, sequencer.Tick(n)*slot)
		i += n - 1
	}
	return picks
}

// weightedPick searches searchRadius indices either side of last, clamped
// to [lo, hi). Each candidate weighs (random * active) mod mod(j); the
// heaviest wins and nothing is picked when every weight is zero.
func (e *Engine) weightedPick(r *rand.Rand, cells uint32, last, lo, hi int, mod func(int) uint32) int {
	if lo >= hi {
		return -1
	}
	last = max(lo, min(last, hi-1))
	best, idx := uint32(0), -1
	for j := max(lo, last-searchRadius); j <= min(hi-1, last+searchRadius); j++ {
		w := (r.Uint32() * active(cells, j)) % mod(j)
		if w > best {
			best, idx = w, j
		}
	}
	return idx
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

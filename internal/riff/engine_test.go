package riff

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/scale"
	"github.com/cbegin/atone-go/internal/sequencer"
)

func newTestEngine(t *testing.T, numBars int) *Engine {
	t.Helper()
	riffs, err := Catalog(DefaultCatalog)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	notes, err := scale.NewNoteMap(scale.Default, 22)
	if err != nil {
		t.Fatalf("note map: %v", err)
	}
	e, err := NewEngine(riffs, notes, numBars, 80)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestEnergyCurve(t *testing.T) {
	for n := 1; n <= MaxBars; n++ {
		if got := EnergyCurve(0, n); got != 100 {
			t.Fatalf("EnergyCurve(0,%d) = %d, want 100", n, got)
		}
		for i := 0; i < n; i++ {
			got := EnergyCurve(i, n)
			if got < 0 || got > 130 {
				t.Fatalf("EnergyCurve(%d,%d) = %d out of range", i, n, got)
			}
			if 3*i >= n && 3*i <= 2*n && got != 70 {
				t.Fatalf("EnergyCurve(%d,%d) = %d, want plateau 70", i, n, got)
			}
		}
	}
	cases := []struct{ i, n, want int }{
		{0, 8, 100},
		{2, 8, 78},
		{3, 8, 70},
		{5, 8, 70},
		{6, 8, 107},
		{7, 8, 118},
	}
	for _, tc := range cases {
		if got := EnergyCurve(tc.i, tc.n); got != tc.want {
			t.Fatalf("EnergyCurve(%d,%d) = %d, want %d", tc.i, tc.n, got, tc.want)
		}
	}
}

func TestCatalogFallback(t *testing.T) {
	riffs, err := Catalog("nope")
	if !errors.Is(err, errdefs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !reflect.DeepEqual(riffs, catalogs[DefaultCatalog]) {
		t.Fatalf("fallback is not the default catalog")
	}
	for _, name := range CatalogNames() {
		if _, err := Catalog(name); err != nil {
			t.Fatalf("catalog %s: %v", name, err)
		}
	}
}

func TestNewEngineValidates(t *testing.T) {
	riffs, _ := Catalog(DefaultCatalog)
	notes, _ := scale.NewNoteMap(scale.Default, 22)
	for _, n := range []int{0, -1, MaxBars + 1} {
		if _, err := NewEngine(riffs, notes, n, 80); !errors.Is(err, errdefs.ErrInvalidParameter) {
			t.Fatalf("numbars %d: expected invalid parameter, got %v", n, err)
		}
	}
	if _, err := NewEngine(nil, notes, 2, 80); !errors.Is(err, errdefs.ErrInvalidParameter) {
		t.Fatalf("empty catalog: got %v", err)
	}
	bad := []Riff{{H, 0, 0, 0, 0, 0, 0, 0}}
	if _, err := NewEngine(bad, notes, 2, 80); !errors.Is(err, errdefs.ErrInvalidParameter) {
		t.Fatalf("leading hold: got %v", err)
	}
}

func TestPickRiffWithoutHistoryDrawsOnce(t *testing.T) {
	e := newTestEngine(t, 2)
	r := rand.New(rand.NewPCG(7, 7))
	ref := rand.New(rand.NewPCG(7, 7))

	got := e.pickRiff(r)
	if want := ref.IntN(len(e.riffs)); got != want {
		t.Fatalf("pickRiff = %d, want first draw %d", got, want)
	}
	if r.Uint64() != ref.Uint64() {
		t.Fatalf("pickRiff consumed more than one draw")
	}
}

func TestPickRiffAfterPitchZero(t *testing.T) {
	e := newTestEngine(t, 2)
	if e.LastNote() != -1 {
		t.Fatalf("fresh engine last note = %d, want -1", e.LastNote())
	}
	// MIDI pitch 0 is a real note and must not reset the history.
	e.lastNote = 0
	r := rand.New(rand.NewPCG(11, 11))
	ref := rand.New(rand.NewPCG(11, 11))
	e.pickRiff(r)
	for i := 0; i < candidates; i++ {
		ref.IntN(len(e.riffs))
	}
	if r.Uint64() != ref.Uint64() {
		t.Fatalf("pickRiff after pitch 0 did not draw %d candidates", candidates)
	}
}

func TestPickRiffPrefersClosestStart(t *testing.T) {
	e := newTestEngine(t, 2)
	for seed := uint64(0); seed < 200; seed++ {
		e.lastNote = e.notes[int(seed)%len(e.notes)]
		r := rand.New(rand.NewPCG(seed, 1))
		ref := rand.New(rand.NewPCG(seed, 1))

		got := e.pickRiff(r)
		for i := 0; i < candidates; i++ {
			idx := ref.IntN(len(e.riffs))
			if e.distance(idx) < e.distance(got) {
				t.Fatalf("seed %d: picked %d (distance %d) over %d (distance %d)",
					seed, got, e.distance(got), idx, e.distance(idx))
			}
		}
	}
}

func TestDistanceTreatsUnisonAsSix(t *testing.T) {
	e := newTestEngine(t, 2)
	e.lastNote = e.pitch(e.riffs[0][0])
	if d := e.distance(0); d != repeatDistance {
		t.Fatalf("distance = %d, want %d", d, repeatDistance)
	}
}

func TestPlayRiffFullEnergyKeepsEveryNote(t *testing.T) {
	e := newTestEngine(t, 1)
	s, _ := sequencer.NewScheduler(120)
	r := rand.New(rand.NewPCG(1, 2))
	rf := Riff{0, 2, 2, H, R, 4, H, R}

	end := e.playRiff(s, r, rf, 100, 10, 1000)
	if end != 1080 {
		t.Fatalf("end = %d, want 1080", end)
	}
	notes := s.TakeNotes()
	want := []struct {
		step       Step
		start, dur sequencer.Tick
	}{
		{0, 1000, 10},
		{2, 1010, 30},
		{4, 1050, 20},
	}
	if len(notes) != len(want) {
		t.Fatalf("notes = %+v", notes)
	}
	for i, w := range want {
		n := notes[i]
		if n.Pitch != e.pitch(w.step) || n.Start != w.start || n.Duration != w.dur {
			t.Fatalf("note %d = %+v, want step %d at %d for %d", i, n, w.step, w.start, w.dur)
		}
	}
	if e.LastNote() != e.pitch(4) {
		t.Fatalf("last note = %d, want %d", e.LastNote(), e.pitch(4))
	}
}

func TestPlayBarDeterministic(t *testing.T) {
	run := func() []sequencer.Note {
		e := newTestEngine(t, 4)
		s, _ := sequencer.NewScheduler(100)
		r := rand.New(rand.NewPCG(42, 42))
		var out []sequencer.Note
		for bar := 0; bar < 8; bar++ {
			e.PlayBar(s, r)
			out = append(out, s.TakeNotes()...)
			s.Advance()
		}
		return out
	}
	a, b := run(), run()
	if len(a) == 0 {
		t.Fatalf("no notes generated")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different output")
	}
}

func TestPlayBarStaysInsideBar(t *testing.T) {
	e := newTestEngine(t, 2)
	s, _ := sequencer.NewScheduler(100)
	r := rand.New(rand.NewPCG(42, 0))

	for bar := 0; bar < 16; bar++ {
		info := e.PlayBar(s, r)
		switch info.RiffsPerBar {
		case 1, 2, 4:
		default:
			t.Fatalf("riffs per bar = %d", info.RiffsPerBar)
		}
		if len(info.Riffs) != info.RiffsPerBar {
			t.Fatalf("picked %d riffs, want %d", len(info.Riffs), info.RiffsPerBar)
		}
		start, end := s.Marker(), s.Marker()+s.BarDuration()
		for _, n := range s.TakeNotes() {
			if n.Voice != sequencer.VoiceMelody {
				t.Fatalf("voice = %v", n.Voice)
			}
			if n.Start < start || n.End() > end || n.Duration == 0 {
				t.Fatalf("bar %d: note %+v outside [%d,%d]", bar, n, start, end)
			}
		}
		s.Advance()
	}
	if s.Marker() != 16*2400 {
		t.Fatalf("marker = %d", s.Marker())
	}
}

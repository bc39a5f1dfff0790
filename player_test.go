package atone

import (
	"errors"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/atone-go/internal/config"
	"github.com/cbegin/atone-go/internal/midiout"
)

type recorder struct {
	msgs []midi.Message
	fail error
}

func (r *recorder) send(msg midi.Message) error {
	if r.fail != nil {
		return r.fail
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) count() (programs, ons, offs int) {
	for _, msg := range r.msgs {
		var ch, key, vel, prog uint8
		switch {
		case msg.GetProgramChange(&ch, &prog):
			programs++
		case msg.GetNoteStart(&ch, &key, &vel):
			ons++
		case msg.GetNoteEnd(&ch, &key):
			offs++
		}
	}
	return
}

// newTestPlayer clocks one frame per tick.
func newTestPlayer(t *testing.T, cfg Config, rec *recorder, opts ...PlayerOption) (*Player, *Composer) {
	t.Helper()
	c, err := NewComposer(cfg)
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	opts = append([]PlayerOption{WithSender(rec.send), WithSampleRate(1000), WithLookahead(0)}, opts...)
	p, err := NewPlayer(c, opts...)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	return p, c
}

func TestPlayerReleasesEventsWithClock(t *testing.T) {
	rec := &recorder{}
	p, c := newTestPlayer(t, DefaultConfig(), rec)

	p.pull(1)
	if c.Bars() != 1 {
		t.Fatalf("first pull should generate bar 0, bars = %d", c.Bars())
	}
	programs, ons, _ := rec.count()
	if programs != 1 || ons == 0 {
		t.Fatalf("programs = %d ons = %d after first pull", programs, ons)
	}

	// Nothing past the clock may be sent.
	sent := len(rec.msgs)
	p.pull(1)
	if p.Clock() != 2 {
		t.Fatalf("clock = %d", p.Clock())
	}
	if c.Pending() == 0 {
		t.Fatalf("the rest of the bar should still be queued")
	}

	p.pull(int(c.BarDuration()))
	if c.Bars() != 2 {
		t.Fatalf("crossing the bar line should generate bar 1, bars = %d", c.Bars())
	}
	if len(rec.msgs) <= sent {
		t.Fatalf("no events released over a full bar")
	}
}

func TestPlayerStopsAfterBars(t *testing.T) {
	rec := &recorder{}
	p, c := newTestPlayer(t, DefaultConfig(), rec, WithBars(2))
	watch := p.Watch()

	for i := 0; i < 100 && !p.isFinished(); i++ {
		p.pull(100)
	}
	if !p.isFinished() {
		t.Fatalf("player did not finish")
	}
	if c.Bars() != 2 {
		t.Fatalf("bars = %d, want 2", c.Bars())
	}
	if c.Pending() != 0 {
		t.Fatalf("%d events left queued", c.Pending())
	}
	_, ons, offs := rec.count()
	if ons == 0 || ons != offs {
		t.Fatalf("ons = %d offs = %d", ons, offs)
	}
	if len(p.sounding) != 0 {
		t.Fatalf("notes still sounding: %v", p.sounding)
	}

	var bars []int
	for len(watch) > 0 {
		ev := <-watch
		if ev.Kind == EventBar {
			bars = append(bars, ev.Bar.Index)
		}
	}
	if len(bars) != 2 || bars[0] != 0 || bars[1] != 1 {
		t.Fatalf("bar events = %v", bars)
	}
}

func TestPlayerSendFailureStops(t *testing.T) {
	boom := errors.New("port gone")
	rec := &recorder{fail: boom}
	p, _ := newTestPlayer(t, DefaultConfig(), rec)
	watch := p.Watch()

	p.pull(10)
	if !errors.Is(p.Err(), boom) || !p.isFinished() {
		t.Fatalf("err = %v finished = %v", p.Err(), p.isFinished())
	}
	select {
	case ev := <-watch:
		for ev.Kind == EventBar {
			ev = <-watch
		}
		if ev.Kind != EventError {
			t.Fatalf("event kind = %d", ev.Kind)
		}
	default:
		t.Fatalf("no error event")
	}
}

func TestPlayerReportsExhaustion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Algorithm = config.AlgorithmLSystem
	cfg.Grammar.Axiom = "FFF{"
	cfg.Grammar.Generations = 0
	rec := &recorder{}
	p, _ := newTestPlayer(t, cfg, rec, WithBars(3))
	watch := p.Watch()

	for i := 0; i < 100 && !p.isFinished(); i++ {
		p.pull(100)
	}
	if p.Err() != nil {
		t.Fatalf("exhaustion must not stop playback: %v", p.Err())
	}
	var exhausted int
	for len(watch) > 0 {
		if ev := <-watch; ev.Kind == EventBar && errors.Is(ev.Err, ErrSequenceExhausted) {
			exhausted++
		}
	}
	if exhausted != 2 {
		t.Fatalf("exhausted bars = %d, want 2", exhausted)
	}
}

func TestNewPlayerValidates(t *testing.T) {
	c, err := NewComposer(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	send := midiout.Sender(func(midi.Message) error { return nil })
	if _, err := NewPlayer(c, WithSender(send), WithSampleRate(0)); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("sample rate 0: %v", err)
	}
	if _, err := NewPlayer(c, WithSender(send), WithLookahead(-time.Second)); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("negative lookahead: %v", err)
	}
	if _, err := NewPlayer(nil); err == nil {
		t.Fatalf("nil composer accepted")
	}
}

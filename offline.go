package atone

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/midiout"
	intseq "github.com/cbegin/atone-go/internal/sequencer"
)

// Render generates bars bars without a clock and returns every MIDI event
// in tick order, including the note-offs of the last bar, plus the per-bar
// results. Grammar exhaustion does not stop the render.
func Render(cfg Config, bars int, opts ...ComposerOption) ([]Event, []Bar, error) {
	if bars < 1 {
		return nil, nil, errdefs.Invalid("bars %d must be positive", bars)
	}
	c, err := NewComposer(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	out := make([]Bar, 0, bars)
	for i := 0; i < bars; i++ {
		b, err := c.NextBar()
		if err != nil && !errors.Is(err, errdefs.ErrSequenceExhausted) {
			return nil, nil, err
		}
		out = append(out, b)
	}
	var events []Event
	for _, ev := range c.DrainAll() {
		if ev.Kind != intseq.EventTimer {
			events = append(events, ev)
		}
	}
	return events, out, nil
}

// WriteSMF renders bars bars and writes them as a Standard MIDI File.
func WriteSMF(w io.Writer, cfg Config, bars int, opts ...ComposerOption) error {
	events, _, err := Render(cfg, bars, opts...)
	if err != nil {
		return err
	}
	return midiout.WriteSMF(w, cfg.BPM, events)
}

// WriteSMFFile is WriteSMF to a file path.
func WriteSMFFile(path string, cfg Config, bars int, opts ...ComposerOption) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create midi file")
	}
	if err := WriteSMF(f, cfg, bars, opts...); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close midi file")
}

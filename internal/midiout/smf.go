package midiout

import (
	"io"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/atone-go/internal/sequencer"
)

// PPQ is the file resolution in ticks per quarter note.
const PPQ = 480

// WriteSMF writes events as a format 1 file: a tempo track followed by one
// track per voice that has events. Events must be in tick order.
func WriteSMF(w io.Writer, bpm int, events []sequencer.Event) error {
	if bpm < 1 {
		return errors.Errorf("bpm %d must be positive", bpm)
	}
	beat := uint64(sequencer.TicksPerMinute / bpm)
	toFile := func(t sequencer.Tick) uint64 { return uint64(t) * PPQ / beat }

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(PPQ)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(float64(bpm)))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return errors.Wrap(err, "add tempo track")
	}

	for _, v := range sequencer.Voices {
		var tr smf.Track
		var last uint64
		n := 0
		for _, ev := range events {
			if ev.Voice != v {
				continue
			}
			msg, ok := Message(ev)
			if !ok {
				continue
			}
			if n == 0 {
				tr.Add(0, smf.MetaTrackSequenceName(v.String()))
			}
			at := toFile(ev.Tick)
			tr.Add(uint32(at-last), msg)
			last = at
			n++
		}
		if n == 0 {
			continue
		}
		tr.Close(0)
		if err := sm.Add(tr); err != nil {
			return errors.Wrapf(err, "add %s track", v)
		}
	}
	if _, err := sm.WriteTo(w); err != nil {
		return errors.Wrap(err, "write midi file")
	}
	return nil
}

// Package midiout turns scheduled events into MIDI: live on an output port,
// or offline as a Standard MIDI File.
package midiout

import (
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cbegin/atone-go/internal/sequencer"
)

// PercussionChannel is General MIDI channel 10, zero based.
const PercussionChannel = 9

// Channel returns the zero-based MIDI channel of a voice.
func Channel(v sequencer.Voice) uint8 {
	switch v {
	case sequencer.VoicePercussion:
		return PercussionChannel
	case sequencer.VoiceBass:
		return 1
	case sequencer.VoiceChords:
		return 2
	case sequencer.VoiceLead:
		return 3
	default:
		return 0
	}
}

// Message converts an event to a MIDI message. Timer events have no MIDI
// form and return false. Unknown instruments select program 0.
func Message(ev sequencer.Event) (midi.Message, bool) {
	ch := Channel(ev.Voice)
	switch ev.Kind {
	case sequencer.EventNoteOn:
		return midi.NoteOn(ch, clamp7(ev.Pitch), clamp7(ev.Velocity)), true
	case sequencer.EventNoteOff:
		return midi.NoteOff(ch, clamp7(ev.Pitch)), true
	case sequencer.EventProgram:
		p, _ := Program(ev.Instrument)
		return midi.ProgramChange(ch, p), true
	default:
		return nil, false
	}
}

// Sender delivers one message.
type Sender func(midi.Message) error

// Send converts and delivers events in order, stopping at the first error.
func Send(send Sender, events []sequencer.Event) error {
	for _, ev := range events {
		msg, ok := Message(ev)
		if !ok {
			continue
		}
		if err := send(msg); err != nil {
			return errors.Wrapf(err, "send %s at tick %d", ev.Kind, ev.Tick)
		}
	}
	return nil
}

// Port is an open MIDI output.
type Port struct {
	out  drivers.Out
	send Sender
}

// Open connects to the first output port whose name contains name, or to
// the first port when name is empty. A driver must be registered by the
// caller, for example by importing drivers/rtmididrv.
func Open(name string) (*Port, error) {
	var out drivers.Out
	if name == "" {
		outs := midi.GetOutPorts()
		if len(outs) == 0 {
			return nil, errors.New("no MIDI output ports")
		}
		out = outs[0]
	} else {
		var err error
		out, err = midi.FindOutPort(name)
		if err != nil {
			return nil, errors.Wrapf(err, "find MIDI output %q", name)
		}
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, errors.Wrapf(err, "open MIDI output %q", out.String())
	}
	return &Port{out: out, send: send}, nil
}

// Name returns the port name.
func (p *Port) Name() string { return p.out.String() }

// Send delivers one message.
func (p *Port) Send(msg midi.Message) error { return p.send(msg) }

// Panic silences every channel the composer uses.
func (p *Port) Panic() error {
	for _, v := range sequencer.Voices {
		// All Notes Off
		if err := p.send(midi.ControlChange(Channel(v), 123, 0)); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the port.
func (p *Port) Close() error { return p.out.Close() }

// PortNames lists the available output ports.
func PortNames() []string {
	var names []string
	for _, out := range midi.GetOutPorts() {
		names = append(names, strings.TrimSpace(out.String()))
	}
	return names
}

func clamp7(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

package sequencer

// Tick is the scheduling time unit. At the default resolution one tick is one
// millisecond, so a beat lasts 60000/bpm ticks.
type Tick uint64

// TicksPerMinute fixes the tick resolution.
const TicksPerMinute = 60000

// BeatsPerBar is fixed at four; every bar is 4/4.
const BeatsPerBar = 4

// Voice identifies an independent line with its own instrument and cursor.
type Voice int

const (
	VoiceMelody Voice = iota // riff or grammar line
	VoiceBass
	VoiceChords
	VoiceLead
	VoicePercussion
)

// Voices lists every voice in channel order.
var Voices = []Voice{VoiceMelody, VoiceBass, VoiceChords, VoiceLead, VoicePercussion}

func (v Voice) String() string {
	switch v {
	case VoiceMelody:
		return "melody"
	case VoiceBass:
		return "bass"
	case VoiceChords:
		return "chords"
	case VoiceLead:
		return "lead"
	case VoicePercussion:
		return "percussion"
	default:
		return "unknown"
	}
}

// EventKind identifies scheduled events.
type EventKind int

const (
	EventNoteOn EventKind = iota + 1
	EventNoteOff
	EventProgram
	EventTimer
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note-on"
	case EventNoteOff:
		return "note-off"
	case EventProgram:
		return "program"
	case EventTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// Event is one deferred message. Instrument is set only for EventProgram and
// is passed through untouched to the backend.
type Event struct {
	Kind       EventKind
	Tick       Tick
	Voice      Voice
	Pitch      int
	Velocity   int
	Instrument string
}

// Note is a sounded note as emitted by an engine.
type Note struct {
	Voice    Voice
	Pitch    int
	Velocity int
	Start    Tick
	Duration Tick
}

// End returns the tick of the note-off.
func (n Note) End() Tick { return n.Start + n.Duration }

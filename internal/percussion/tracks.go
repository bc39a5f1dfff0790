package percussion

// General MIDI percussion keys (channel 10).
const (
	Kick        uint8 = 36
	SideStick   uint8 = 37
	Snare       uint8 = 38
	Clap        uint8 = 39
	ClosedHat   uint8 = 42
	PedalHat    uint8 = 44
	OpenHat     uint8 = 46
	LowTom      uint8 = 45
	HighTom     uint8 = 50
	Crash       uint8 = 49
	Ride        uint8 = 51
	Tambourine  uint8 = 54
	Cowbell     uint8 = 56
	HighBongo   uint8 = 60
	LowConga    uint8 = 64
	Claves      uint8 = 75
	HighWood    uint8 = 76
	LowWood     uint8 = 77
	Shaker      uint8 = 82
	Metronome   uint8 = HighWood
	MetroAccent uint8 = LowWood
)

// Hit is one entry of a track: up to three simultaneous drums lasting
// 1/Division of a bar. A zero drum slot is silent.
type Hit struct {
	Division int
	Drums    [3]uint8
}

// Track is a named one-bar pattern.
type Track struct {
	Name string
	Hits []Hit
}

// DefaultTrack is used when a name is not found.
const DefaultTrack = "Metronome"

var tracks = []Track{
	{
		Name: "Metronome",
		Hits: []Hit{
			{4, [3]uint8{MetroAccent}},
			{4, [3]uint8{Metronome}},
			{4, [3]uint8{Metronome}},
			{4, [3]uint8{Metronome}},
		},
	},
	{
		Name: "Rock",
		Hits: []Hit{
			{8, [3]uint8{Kick, ClosedHat}},
			{8, [3]uint8{ClosedHat}},
			{8, [3]uint8{Snare, ClosedHat}},
			{8, [3]uint8{ClosedHat}},
			{8, [3]uint8{Kick, ClosedHat}},
			{8, [3]uint8{Kick, ClosedHat}},
			{8, [3]uint8{Snare, ClosedHat}},
			{8, [3]uint8{ClosedHat}},
		},
	},
	{
		Name: "Disco",
		Hits: []Hit{
			{8, [3]uint8{Kick, ClosedHat}},
			{8, [3]uint8{OpenHat}},
			{8, [3]uint8{Kick, Clap, ClosedHat}},
			{8, [3]uint8{OpenHat}},
			{8, [3]uint8{Kick, ClosedHat}},
			{8, [3]uint8{OpenHat}},
			{8, [3]uint8{Kick, Clap, ClosedHat}},
			{8, [3]uint8{OpenHat}},
		},
	},
	{
		Name: "Shuffle",
		Hits: []Hit{
			{6, [3]uint8{Kick, Ride}},
			{12, [3]uint8{Ride}},
			{6, [3]uint8{Snare, Ride}},
			{12, [3]uint8{Ride}},
			{6, [3]uint8{Kick, Ride}},
			{12, [3]uint8{Ride}},
			{6, [3]uint8{Snare, Ride}},
			{12, [3]uint8{Kick, Ride}},
		},
	},
	{
		Name: "Bossa",
		Hits: []Hit{
			{8, [3]uint8{Kick, SideStick, Shaker}},
			{8, [3]uint8{Shaker}},
			{8, [3]uint8{Shaker}},
			{8, [3]uint8{Kick, SideStick, Shaker}},
			{8, [3]uint8{Kick, Shaker}},
			{8, [3]uint8{Shaker}},
			{8, [3]uint8{SideStick, Shaker}},
			{8, [3]uint8{Kick, Shaker}},
		},
	},
	{
		Name: "Funk",
		Hits: []Hit{
			{16, [3]uint8{Kick, ClosedHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{Kick, ClosedHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{Snare, ClosedHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{Kick, OpenHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{Kick, ClosedHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{Snare, ClosedHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{Kick, ClosedHat}},
			{16, [3]uint8{Snare, OpenHat}},
		},
	},
	{
		Name: "HalfTime",
		Hits: []Hit{
			{4, [3]uint8{Kick, Ride}},
			{4, [3]uint8{Ride}},
			{4, [3]uint8{Snare, Ride}},
			{8, [3]uint8{Ride}},
			{8, [3]uint8{Kick, PedalHat}},
		},
	},
	{
		Name: "Breakbeat",
		Hits: []Hit{
			{8, [3]uint8{Kick, ClosedHat}},
			{8, [3]uint8{ClosedHat}},
			{8, [3]uint8{Snare, ClosedHat}},
			{16, [3]uint8{ClosedHat}},
			{16, [3]uint8{Kick}},
			{8, [3]uint8{Kick, ClosedHat}},
			{8, [3]uint8{Tambourine}},
			{8, [3]uint8{Snare, ClosedHat}},
			{8, [3]uint8{Crash}},
		},
	},
}

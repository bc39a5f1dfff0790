package scale

import (
	"strconv"
	"strings"

	"github.com/cbegin/atone-go/internal/errdefs"
)

// Quality identifies the interval pattern of a scale.
type Quality int

const (
	Major Quality = iota
	NaturalMinor
	MelodicMinor
	HarmonicMinor
	MajorPentatonic
	MinorPentatonic
	Blues
)

// Intervals from the root in semitones, one octave.
var intervals = map[Quality][]int{
	Major:           {0, 2, 4, 5, 7, 9, 11},
	NaturalMinor:    {0, 2, 3, 5, 7, 8, 10},
	MelodicMinor:    {0, 2, 3, 5, 7, 9, 11},
	HarmonicMinor:   {0, 2, 3, 5, 7, 8, 11},
	MajorPentatonic: {0, 2, 4, 7, 9},
	MinorPentatonic: {0, 3, 5, 7, 10},
	Blues:           {0, 3, 5, 6, 7, 10},
}

var qualityNames = map[string]Quality{
	"major":            Major,
	"minor":            NaturalMinor,
	"natural_minor":    NaturalMinor,
	"melodic_minor":    MelodicMinor,
	"harmonic_minor":   HarmonicMinor,
	"major_pentatonic": MajorPentatonic,
	"minor_pentatonic": MinorPentatonic,
	"blues":            Blues,
}

var rootSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// middleC is the MIDI pitch of C4; roots are placed in that octave.
const middleC = 60

// Scale is a root pitch plus a quality.
type Scale struct {
	Root    int // absolute MIDI pitch of degree 0
	Quality Quality
}

// Default is C major.
var Default = Scale{Root: middleC, Quality: Major}

// Intervals returns the one-octave semitone pattern of the scale.
func (s Scale) Intervals() []int {
	return intervals[s.Quality]
}

// Parse resolves names like "C_major", "F#-blues", "Bb harmonic_minor" or
// "A:minor_pentatonic". An unknown root yields Default; an unknown quality
// keeps the root and falls back to Major. Both cases return the fallback
// together with an ErrConfiguration so the caller can warn and carry on.
func Parse(name string) (Scale, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Default, errdefs.Configuration("empty scale name")
	}
	letter := name[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	semis, ok := rootSemitones[letter]
	if !ok {
		return Default, errdefs.Configuration("unknown scale root in %q", name)
	}
	rest := name[1:]
	if len(rest) > 0 {
		switch rest[0] {
		case '#':
			semis++
			rest = rest[1:]
		case 'b':
			// "b" followed by a separator is a flat; "blues" directly after the
			// letter is not.
			if len(rest) == 1 || isSeparator(rest[1]) {
				semis--
				rest = rest[1:]
			}
		}
	}
	rest = strings.TrimLeftFunc(rest, func(r rune) bool { return r < 128 && isSeparator(byte(r)) })
	token := strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(rest))

	s := Scale{Root: middleC + semis, Quality: Major}
	if token == "" {
		return s, nil
	}
	q, ok := qualityNames[token]
	if !ok {
		return s, errdefs.Configuration("unknown scale quality %q", rest)
	}
	s.Quality = q
	return s, nil
}

func isSeparator(c byte) bool {
	return c == '_' || c == '-' || c == ' ' || c == ':'
}

// QualityNames lists the accepted quality tokens.
func QualityNames() []string {
	return append([]string(nil), qualityLabels[:]...)
}

var qualityLabels = [...]string{"major", "natural_minor", "melodic_minor", "harmonic_minor", "major_pentatonic", "minor_pentatonic", "blues"}

func (q Quality) String() string {
	if q < 0 || int(q) >= len(qualityLabels) {
		return "unknown"
	}
	return qualityLabels[q]
}

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// String formats the scale as root name, octave and quality, e.g. "C4 major".
func (s Scale) String() string {
	return pitchClasses[Wrap(s.Root, 12)] + strconv.Itoa(s.Root/12-1) + " " + s.Quality.String()
}

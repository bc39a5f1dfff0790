package riff

// NPR is the number of steps in every riff.
const NPR = 8

// Step is a scale degree relative to the note map center, or Hold or Rest.
type Step int8

const (
	Hold Step = 127  // extend the previous note
	Rest Step = -128 // silence
)

// Sounding reports whether s is a pitch rather than Hold or Rest.
func (s Step) Sounding() bool { return s != Hold && s != Rest }

// Riff is a fixed melodic template.
type Riff [NPR]Step

// BeatImportance biases strong beats against suppression; index 0 is the
// downbeat.
var BeatImportance = [NPR]int{28, 0, 7, 0, 14, 0, 7, 4}

// DefaultCatalog is used when a name is not found.
const DefaultCatalog = "classic"

const (
	H = Hold
	R = Rest
)

var catalogs = map[string][]Riff{
	"classic": {
		{0, 2, 4, 2, 0, H, R, 0},
		{4, H, 2, 0, 1, 2, H, R},
		{0, 0, 4, 4, 5, 5, 4, H},
		{3, 3, 2, 2, 1, 1, 0, H},
		{-3, -1, 0, 2, 4, H, 2, R},
		{7, 6, 4, 2, 4, H, H, R},
		{2, R, 2, 4, 2, 1, 0, H},
		{0, H, -1, H, -3, H, -4, R},
		{4, 5, 7, H, 5, 4, 2, H},
		{-4, -2, 0, H, -2, 0, 2, H},
		{5, 4, 2, 4, 5, H, 7, R},
		{2, 1, 0, -1, 0, H, R, R},
		{0, 4, 7, 4, 2, 4, 0, H},
		{1, H, 3, 2, 1, 0, -1, H},
		{6, 4, H, 2, 3, 1, H, R},
		{-1, 0, 1, 2, 3, 4, 5, H},
	},
	"arpeggio": {
		{0, 2, 4, 7, 4, 2, 0, H},
		{-3, 0, 2, 4, 2, 0, -3, H},
		{2, 4, 6, 9, 6, 4, 2, R},
		{-2, 0, 3, 5, 3, 0, -2, H},
		{4, 7, 9, 11, 9, 7, 4, H},
		{0, 4, 7, H, 4, 0, -3, R},
		{-5, -3, 0, 2, 0, -3, -5, H},
		{1, 3, 5, 8, 5, 3, 1, R},
	},
}

// CatalogNames lists the available catalogs.
func CatalogNames() []string {
	return []string{"classic", "arpeggio"}
}

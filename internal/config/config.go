// Package config holds the composer settings and their JSON form.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/cbegin/atone-go/internal/errdefs"
)

// Algorithm names the generator that drives the melody.
const (
	AlgorithmRiff      = "riff"
	AlgorithmLSystem   = "lsystem"
	AlgorithmAutomaton = "automaton"
)

// RiffConfig configures the riff engine.
type RiffConfig struct {
	Catalog string `json:"catalog"`
	NumBars int    `json:"numbars"`
}

// RuleConfig is one grammar rule. Trigger is a single symbol; an empty
// trigger disables the rule.
type RuleConfig struct {
	Trigger     string `json:"trigger"`
	Replacement string `json:"replacement"`
}

// GrammarConfig configures the L-system engine.
type GrammarConfig struct {
	Axiom       string       `json:"axiom"`
	Rules       []RuleConfig `json:"rules"`
	Generations int          `json:"generations"`
	Capacity    int          `json:"capacity"`
}

// AutomatonConfig configures the cellular automaton.
type AutomatonConfig struct {
	Rule         uint64 `json:"rule"`
	Neighborhood uint32 `json:"neighborhood"`
	Boundary     string `json:"boundary"`
	Bass         string `json:"bass"`
	Chords       string `json:"chords"`
	Lead         string `json:"lead"`
}

// Config is the full composer configuration.
type Config struct {
	Algorithm          string            `json:"algorithm"`
	BPM                int               `json:"bpm"`
	Scale              string            `json:"scale"`
	Height             int               `json:"height"`
	Seed               uint64            `json:"seed"`
	Velocity           int               `json:"velocity"`
	PercussionVelocity int               `json:"percussionVelocity"`
	Percussion         string            `json:"percussion"`
	Riff               RiffConfig        `json:"riff"`
	Grammar            GrammarConfig     `json:"grammar"`
	Automaton          AutomatonConfig   `json:"automaton"`
	Instruments        map[string]string `json:"instruments,omitempty"` // voice name -> General MIDI name
}

// Limits checked by Validate.
const (
	MaxGenerations     = 64
	MaxAutomatonHeight = 32
	MaxHeight          = 128
	MaxBPM             = 1000
	MaxNumBars         = 8
)

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Algorithm:          AlgorithmRiff,
		BPM:                100,
		Scale:              "C major",
		Height:             24,
		Seed:               1,
		Velocity:           100,
		PercussionVelocity: 127,
		Percussion:         "Metronome",
		Riff: RiffConfig{
			Catalog: "classic",
			NumBars: 4,
		},
		Grammar: GrammarConfig{
			Axiom: "X",
			Rules: []RuleConfig{
				{Trigger: "X", Replacement: "p{X}m{Y}"},
				{Trigger: "Y", Replacement: "F{X}}p{Y}"},
			},
			Generations: 6,
			Capacity:    1 << 16,
		},
		Automaton: AutomatonConfig{
			Rule:         30,
			Neighborhood: 7,
			Boundary:     "cyclic",
			Bass:         "lowest_notes",
			Chords:       "eighth",
			Lead:         "upper_eighth",
		},
		Instruments: map[string]string{
			"melody": "Acoustic Grand Piano",
			"bass":   "Acoustic Bass",
			"chords": "String Ensemble 1",
			"lead":   "Lead 1 (square)",
		},
	}
}

// Load reads a JSON file over the defaults, so omitted fields keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Save writes the config as indented JSON, creating parent directories.
func (c Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "create config dir")
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}

// Validate checks numeric ranges. Unknown names are not errors here; the
// composer falls back to defaults for them.
func (c Config) Validate() error {
	switch {
	case c.BPM < 1 || c.BPM > MaxBPM:
		return errdefs.Invalid("bpm %d out of range 1..%d", c.BPM, MaxBPM)
	case c.Height < 1 || c.Height > MaxHeight:
		return errdefs.Invalid("height %d out of range 1..%d", c.Height, MaxHeight)
	case c.Algorithm == AlgorithmAutomaton && c.Height > MaxAutomatonHeight:
		return errdefs.Invalid("automaton height %d exceeds %d", c.Height, MaxAutomatonHeight)
	case c.Velocity < 0 || c.Velocity > 127:
		return errdefs.Invalid("velocity %d out of range 0..127", c.Velocity)
	case c.PercussionVelocity < 0 || c.PercussionVelocity > 127:
		return errdefs.Invalid("percussion velocity %d out of range 0..127", c.PercussionVelocity)
	case c.Riff.NumBars < 1 || c.Riff.NumBars > MaxNumBars:
		return errdefs.Invalid("numbars %d out of range 1..%d", c.Riff.NumBars, MaxNumBars)
	case c.Grammar.Generations < 0 || c.Grammar.Generations > MaxGenerations:
		return errdefs.Invalid("generations %d out of range 0..%d", c.Grammar.Generations, MaxGenerations)
	case c.Grammar.Capacity < 1:
		return errdefs.Invalid("grammar capacity %d must be positive", c.Grammar.Capacity)
	case len(c.Grammar.Rules) > 2:
		return errdefs.Invalid("grammar has %d rules, at most 2 allowed", len(c.Grammar.Rules))
	}
	for i, r := range c.Grammar.Rules {
		if utf8.RuneCountInString(r.Trigger) > 1 {
			return errdefs.Invalid("rule %d trigger %q must be a single symbol", i+1, r.Trigger)
		}
	}
	return nil
}

// TriggerRune returns the rule's trigger symbol, or 0 when the rule is disabled.
func (r RuleConfig) TriggerRune() rune {
	if r.Trigger == "" {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(r.Trigger)
	return ch
}

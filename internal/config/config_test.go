package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cbegin/atone-go/internal/errdefs"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atone.json")
	data := `{
  "algorithm": "automaton",
  "bpm": 140,
  "automaton": {"rule": 110, "lead": "upper_whole"},
  "instruments": {"lead": "Lead 2 (sawtooth)"}
}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Algorithm != AlgorithmAutomaton || cfg.BPM != 140 {
		t.Fatalf("top-level fields not loaded: %+v", cfg)
	}
	if cfg.Automaton.Rule != 110 || cfg.Automaton.Lead != "upper_whole" {
		t.Fatalf("automaton = %+v", cfg.Automaton)
	}
	// Fields missing from the file keep their defaults.
	def := Default()
	if cfg.Automaton.Neighborhood != def.Automaton.Neighborhood || cfg.Scale != def.Scale {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Instruments["lead"] != "Lead 2 (sawtooth)" || cfg.Instruments["bass"] != def.Instruments["bass"] {
		t.Fatalf("instruments = %v", cfg.Instruments)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{"), 0644)
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "atone.json")
	cfg := Default()
	cfg.Percussion = "Funk"
	cfg.Grammar.Rules = cfg.Grammar.Rules[:1]
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
	}{
		{"bpm", func(c *Config) { c.BPM = 0 }},
		{"height", func(c *Config) { c.Height = 129 }},
		{"automaton height", func(c *Config) { c.Algorithm = AlgorithmAutomaton; c.Height = 40 }},
		{"velocity", func(c *Config) { c.Velocity = 128 }},
		{"percussion velocity", func(c *Config) { c.PercussionVelocity = -1 }},
		{"numbars", func(c *Config) { c.Riff.NumBars = 0 }},
		{"generations", func(c *Config) { c.Grammar.Generations = 65 }},
		{"capacity", func(c *Config) { c.Grammar.Capacity = 0 }},
		{"rules", func(c *Config) { c.Grammar.Rules = make([]RuleConfig, 3) }},
		{"trigger", func(c *Config) { c.Grammar.Rules[0].Trigger = "XY" }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mod(&cfg)
		if err := cfg.Validate(); !errors.Is(err, errdefs.ErrInvalidParameter) {
			t.Fatalf("%s: expected invalid parameter, got %v", tc.name, err)
		}
	}
}

func TestTriggerRune(t *testing.T) {
	if r := (RuleConfig{}).TriggerRune(); r != 0 {
		t.Fatalf("empty trigger = %q", r)
	}
	if r := (RuleConfig{Trigger: "λ"}).TriggerRune(); r != 'λ' {
		t.Fatalf("trigger = %q", r)
	}
}

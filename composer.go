package atone

import (
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	intca "github.com/cbegin/atone-go/internal/automaton"
	"github.com/cbegin/atone-go/internal/config"
	"github.com/cbegin/atone-go/internal/errdefs"
	intls "github.com/cbegin/atone-go/internal/lsystem"
	"github.com/cbegin/atone-go/internal/midiout"
	intperc "github.com/cbegin/atone-go/internal/percussion"
	intriff "github.com/cbegin/atone-go/internal/riff"
	"github.com/cbegin/atone-go/internal/scale"
	intseq "github.com/cbegin/atone-go/internal/sequencer"
)

// Config is the composer configuration; see DefaultConfig and LoadConfig.
type Config = config.Config

// Re-exported so callers need not import internal packages.
type (
	Tick  = intseq.Tick
	Event = intseq.Event
	Note  = intseq.Note
	Voice = intseq.Voice
)

var (
	ErrConfiguration     = errdefs.ErrConfiguration
	ErrInvalidParameter  = errdefs.ErrInvalidParameter
	ErrCapacityExceeded  = errdefs.ErrCapacityExceeded
	ErrSequenceExhausted = errdefs.ErrSequenceExhausted
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a JSON config file over the defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

type Algorithm int

const (
	AlgorithmRiff Algorithm = iota
	AlgorithmLSystem
	AlgorithmAutomaton
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmRiff:
		return config.AlgorithmRiff
	case AlgorithmLSystem:
		return config.AlgorithmLSystem
	case AlgorithmAutomaton:
		return config.AlgorithmAutomaton
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a name to an Algorithm. Unknown names return
// AlgorithmRiff with an ErrConfiguration.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.AlgorithmRiff:
		return AlgorithmRiff, nil
	case config.AlgorithmLSystem, "l-system", "grammar":
		return AlgorithmLSystem, nil
	case config.AlgorithmAutomaton, "ca":
		return AlgorithmAutomaton, nil
	default:
		return AlgorithmRiff, errdefs.Configuration("unknown algorithm %q", name)
	}
}

// Bar is the result of one NextBar call.
type Bar struct {
	Index int
	Start Tick
	Notes []Note
	// Set for the riff algorithm.
	Riff *intriff.BarInfo
	// Set for the automaton algorithm, with the row windows of the bar.
	Automaton *intca.BarInfo
	Slots     [intca.Slots]uint32
}

type ComposerOption func(*composerConfig)

type composerConfig struct {
	logger *log.Logger
	seed   *uint64
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *log.Logger) ComposerOption {
	return func(cfg *composerConfig) {
		cfg.logger = logger
	}
}

// WithSeed overrides the configured seed.
func WithSeed(seed uint64) ComposerOption {
	return func(cfg *composerConfig) {
		cfg.seed = &seed
	}
}

// NewLogger returns the default logger: stderr, warn level, "atone" prefix.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{Prefix: "atone", Level: log.WarnLevel})
}

// Composer generates one bar per NextBar call. It is not safe for
// concurrent use.
type Composer struct {
	cfg    Config
	alg    Algorithm
	logger *log.Logger
	rng    *rand.Rand
	sched  *intseq.Scheduler
	scale  scale.Scale
	notes  scale.NoteMap

	riff    *intriff.Engine
	grammar *intls.Engine
	ca      *intca.Engine
	drums   *intperc.Player

	bar       int
	exhausted bool
}

// NewComposer validates cfg and builds the selected engine. Unknown names
// are logged at warn level and replaced by their defaults; out-of-range
// values and grammar overflow are returned as errors.
func NewComposer(cfg Config, opts ...ComposerOption) (*Composer, error) {
	cc := composerConfig{}
	for _, opt := range opts {
		opt(&cc)
	}
	if cc.logger == nil {
		cc.logger = NewLogger(nil)
	}
	seed := cfg.Seed
	if cc.seed != nil {
		seed = *cc.seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Composer{
		cfg:    cfg,
		logger: cc.logger,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	var err error
	c.alg, err = ParseAlgorithm(cfg.Algorithm)
	c.warn(err, "algorithm", cfg.Algorithm)
	c.scale, err = scale.Parse(cfg.Scale)
	c.warn(err, "scale", cfg.Scale)
	if c.notes, err = scale.NewNoteMap(c.scale, cfg.Height); err != nil {
		return nil, err
	}
	if c.sched, err = intseq.NewScheduler(cfg.BPM); err != nil {
		return nil, err
	}

	track, err := intperc.Lookup(cfg.Percussion)
	c.warn(err, "percussion", cfg.Percussion)
	if c.drums, err = intperc.NewPlayer(track, cfg.PercussionVelocity); err != nil {
		return nil, err
	}

	if err := c.buildEngine(); err != nil {
		return nil, err
	}
	for _, v := range c.voices() {
		name, ok := cfg.Instruments[v.String()]
		if !ok {
			continue
		}
		_, err := midiout.Program(name)
		c.warn(err, "instrument", name, "voice", v)
		c.sched.Program(v, name, 0)
	}
	c.sched.Self(0)
	c.logger.Debug("composer ready", "algorithm", c.alg, "scale", c.scale, "bpm", cfg.BPM, "seed", seed)
	return c, nil
}

func (c *Composer) buildEngine() error {
	cfg := c.cfg
	var err error
	switch c.alg {
	case AlgorithmRiff:
		riffs, cerr := intriff.Catalog(cfg.Riff.Catalog)
		c.warn(cerr, "catalog", cfg.Riff.Catalog)
		c.riff, err = intriff.NewEngine(riffs, c.notes, cfg.Riff.NumBars, cfg.Velocity)
	case AlgorithmLSystem:
		g := intls.Grammar{Axiom: cfg.Grammar.Axiom, Generations: cfg.Grammar.Generations}
		for i, r := range cfg.Grammar.Rules {
			g.Rules[i] = intls.Rule{Trigger: r.TriggerRune(), Replacement: r.Replacement}
		}
		c.grammar, err = intls.NewEngine(g, cfg.Grammar.Capacity, c.notes, cfg.Velocity)
		if err == nil {
			c.logger.Debug("grammar rewritten", "symbols", len(c.grammar.Symbols()), "entries", len(c.grammar.Notes()))
		}
	case AlgorithmAutomaton:
		a := cfg.Automaton
		o := intca.Options{Rule: a.Rule, Neighborhood: a.Neighborhood, Velocity: cfg.Velocity}
		var perr error
		o.Boundary, perr = intca.ParseBoundary(a.Boundary)
		c.warn(perr, "boundary", a.Boundary)
		o.Bass, perr = intca.ParseBass(a.Bass)
		c.warn(perr, "bass", a.Bass)
		o.Chords, perr = intca.ParseChords(a.Chords)
		c.warn(perr, "chords", a.Chords)
		o.Lead, perr = intca.ParseLead(a.Lead)
		c.warn(perr, "lead", a.Lead)
		c.ca, err = intca.NewEngine(o, c.notes, c.rng)
	}
	return errors.Wrapf(err, "%s engine", c.alg)
}

func (c *Composer) warn(err error, keyvals ...any) {
	if err != nil {
		c.logger.Warn(err.Error(), keyvals...)
	}
}

// voices lists the pitched voices the selected algorithm plays.
func (c *Composer) voices() []Voice {
	if c.alg == AlgorithmAutomaton {
		return []Voice{intseq.VoiceBass, intseq.VoiceChords, intseq.VoiceLead}
	}
	return []Voice{intseq.VoiceMelody}
}

// NextBar generates the bar at the marker, plays percussion over it,
// advances the marker by one bar and arms the timer at the new marker.
// ErrSequenceExhausted is returned once the grammar runs out; the marker and
// percussion keep advancing.
func (c *Composer) NextBar() (Bar, error) {
	bar := Bar{Index: c.bar, Start: c.sched.Marker()}
	var err error
	switch c.alg {
	case AlgorithmRiff:
		info := c.riff.PlayBar(c.sched, c.rng)
		bar.Riff = &info
	case AlgorithmLSystem:
		err = c.grammar.PlayBar(c.sched)
	case AlgorithmAutomaton:
		info := c.ca.PlayBar(c.sched, c.rng)
		bar.Automaton = &info
		bar.Slots = c.ca.Slots()
	}
	c.drums.PlayBar(c.sched)
	bar.Notes = c.sched.TakeNotes()
	c.sched.Advance()
	c.sched.Self(c.sched.Marker())
	c.bar++

	if errors.Is(err, errdefs.ErrSequenceExhausted) && !c.exhausted {
		c.exhausted = true
		c.logger.Info("melody finished, percussion continues", "bar", bar.Index)
	}
	return bar, err
}

// Drain returns queued events with Tick <= until in tick order.
func (c *Composer) Drain(until Tick) []Event { return c.sched.Drain(until) }

// DrainAll returns every queued event in tick order.
func (c *Composer) DrainAll() []Event { return c.sched.DrainAll() }

// Pending returns the number of queued events.
func (c *Composer) Pending() int { return c.sched.Pending() }

func (c *Composer) Algorithm() Algorithm   { return c.alg }
func (c *Composer) Config() Config         { return c.cfg }
func (c *Composer) Scale() scale.Scale     { return c.scale }
func (c *Composer) NoteMap() scale.NoteMap { return c.notes }
func (c *Composer) BPM() int               { return c.sched.BPM() }
func (c *Composer) BarDuration() Tick      { return c.sched.BarDuration() }
func (c *Composer) Marker() Tick           { return c.sched.Marker() }
func (c *Composer) Bars() int              { return c.bar }
func (c *Composer) Exhausted() bool        { return c.exhausted }
func (c *Composer) Logger() *log.Logger    { return c.logger }

package atone

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"

	intaudio "github.com/cbegin/atone-go/internal/audio"
	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/midiout"
	intseq "github.com/cbegin/atone-go/internal/sequencer"
)

// PlaybackEvent carries playback progress from Watch().
type PlaybackEvent struct {
	Kind int // EventBar, EventPlaybackEnded or EventError
	Bar  Bar
	Err  error
}

const (
	EventBar int = iota
	EventPlaybackEnded
	EventError
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	port       string
	sender     midiout.Sender
	sampleRate int
	lookahead  time.Duration
	buffer     time.Duration
	bars       int
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{sampleRate: 48000, lookahead: 200 * time.Millisecond, buffer: 50 * time.Millisecond}
}

// WithPort selects the MIDI output port by name substring.
func WithPort(name string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.port = name
	}
}

// WithSender delivers messages to send instead of opening a port.
func WithSender(send midiout.Sender) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sender = send
	}
}

// WithSampleRate sets the rate of the silent clock stream.
func WithSampleRate(rate int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleRate = rate
	}
}

// WithLookahead sets how far ahead of the clock events are released.
func WithLookahead(d time.Duration) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.lookahead = d
	}
}

// WithBufferSize sets the audio device buffer, the granularity of the clock.
func WithBufferSize(d time.Duration) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.buffer = d
	}
}

// WithBars stops playback after n bars; 0 plays forever.
func WithBars(n int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.bars = n
	}
}

// Player drives a Composer from the audio device clock and sends its events
// to MIDI. The audio stream is silent; each buffer the device pulls moves the
// clock forward and releases the events that fall due.
type Player struct {
	mu         sync.Mutex
	composer   *Composer
	send       midiout.Sender
	port       *midiout.Port
	sampleRate int
	lookahead  Tick
	buffer     time.Duration
	maxBars    int
	audio      *intaudio.Player
	frames     int64
	stopping   bool
	finished   bool
	err        error
	sounding   map[[2]int]struct{} // voice, pitch
	done       chan struct{}
	eventCh    chan PlaybackEvent
	eventChMu  sync.Mutex
}

// clock adapts the Player to the audio stream.
type clock struct{ p *Player }

func (c clock) Pull(frames int) { c.p.pull(frames) }
func (c clock) Finished() bool  { return c.p.isFinished() }

// NewPlayer prepares playback of c. Without WithSender it opens a MIDI
// output port, so a driver must be registered.
func NewPlayer(c *Composer, opts ...PlayerOption) (*Player, error) {
	if c == nil {
		return nil, errors.New("nil composer")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errdefs.Invalid("sample rate %d must be positive", cfg.sampleRate)
	}
	if cfg.lookahead < 0 || cfg.bars < 0 {
		return nil, errdefs.Invalid("lookahead and bars must not be negative")
	}
	p := &Player{
		composer:   c,
		send:       cfg.sender,
		sampleRate: cfg.sampleRate,
		lookahead:  Tick(cfg.lookahead / time.Millisecond),
		buffer:     cfg.buffer,
		maxBars:    cfg.bars,
		sounding:   make(map[[2]int]struct{}),
	}
	if p.send == nil {
		port, err := midiout.Open(cfg.port)
		if err != nil {
			return nil, err
		}
		p.port = port
		p.send = port.Send
		c.Logger().Info("midi output", "port", port.Name())
	}
	return p, nil
}

// Play starts the clock. Events due within the lookahead are sent
// immediately.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.audio != nil {
		p.mu.Unlock()
		return errors.New("already playing")
	}
	p.done = make(chan struct{})
	p.advance(p.now() + p.lookahead)
	p.mu.Unlock()

	// The device reads from the stream while it starts, so mu must not be
	// held across calls into the backend.
	backend, err := intaudio.NewPlayer(p.sampleRate, p.buffer, clock{p})
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.audio = backend
	p.mu.Unlock()
	backend.Play()
	return nil
}

// pull runs on the audio goroutine.
func (p *Player) pull(frames int) {
	p.mu.Lock()
	p.frames += int64(frames)
	p.advance(p.now() + p.lookahead)
	done := p.finished
	p.mu.Unlock()
	if done {
		p.signalDone()
	}
}

// now converts pulled frames to ticks. Ticks are milliseconds.
func (p *Player) now() Tick {
	return Tick(p.frames * 1000 / int64(p.sampleRate))
}

// advance sends every event due by until. A timer event generates the next
// bar, whose own early events are sent in the same pass. Callers hold mu.
func (p *Player) advance(until Tick) {
	for !p.finished {
		events := p.composer.Drain(until)
		if len(events) == 0 {
			break
		}
		for _, ev := range events {
			if ev.Kind == intseq.EventTimer {
				p.onTimer()
				continue
			}
			if err := p.deliver(ev); err != nil {
				p.fail(err)
				return
			}
		}
	}
	if p.stopping && p.composer.Pending() == 0 {
		p.finished = true
	}
}

func (p *Player) onTimer() {
	if p.stopping {
		return
	}
	if p.maxBars > 0 && p.composer.Bars() >= p.maxBars {
		p.stopping = true
		return
	}
	bar, err := p.composer.NextBar()
	if err != nil && !errors.Is(err, errdefs.ErrSequenceExhausted) {
		p.fail(err)
		return
	}
	p.sendEvent(PlaybackEvent{Kind: EventBar, Bar: bar, Err: err})
}

func (p *Player) deliver(ev Event) error {
	msg, ok := midiout.Message(ev)
	if !ok {
		return nil
	}
	key := [2]int{int(ev.Voice), ev.Pitch}
	switch ev.Kind {
	case intseq.EventNoteOn:
		p.sounding[key] = struct{}{}
	case intseq.EventNoteOff:
		delete(p.sounding, key)
	}
	return p.send(msg)
}

func (p *Player) fail(err error) {
	p.err = err
	p.finished = true
	p.composer.Logger().Error("playback failed", "err", err)
	p.sendEvent(PlaybackEvent{Kind: EventError, Err: err})
}

func (p *Player) isFinished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

// silence sends a note-off for every sounding note. Callers hold mu.
func (p *Player) silence() {
	for key := range p.sounding {
		ch := midiout.Channel(Voice(key[0]))
		_ = p.send(midi.NoteOff(ch, uint8(key[1])))
		delete(p.sounding, key)
	}
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

func (p *Player) signalDone() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
		close(done)
	}
}

func (p *Player) Pause() {
	a := p.backend()
	if a == nil {
		return
	}
	a.Pause()
	p.mu.Lock()
	p.silence()
	p.mu.Unlock()
}

func (p *Player) Resume() {
	if a := p.backend(); a != nil {
		a.Play()
	}
}

// Stop halts the clock, silences sounding notes and closes a port opened by
// NewPlayer.
func (p *Player) Stop() error {
	p.mu.Lock()
	a := p.audio
	p.audio = nil
	p.mu.Unlock()
	var err error
	if a != nil {
		err = a.Stop()
	}

	p.mu.Lock()
	p.silence()
	p.finished = true
	if p.port != nil {
		if perr := p.port.Panic(); err == nil {
			err = errors.Wrap(perr, "silence midi output")
		}
		if cerr := p.port.Close(); err == nil {
			err = errors.Wrap(cerr, "close midi output")
		}
		p.port = nil
	}
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

func (p *Player) backend() *intaudio.Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio
}

// Wait blocks until playback ends. Without WithBars it blocks until Stop.
// Wait returns immediately if no playback is active.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events:
//   - EventBar: a bar was generated (Bar set; Err is ErrSequenceExhausted
//     once the grammar has run out)
//   - EventPlaybackEnded: playback finished or was stopped
//   - EventError: sending failed and playback stopped
//
// The channel is buffered (cap 8); receive in a goroutine to avoid dropping
// events. Only the most recent Watch() channel receives events; call Watch
// before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// Err returns the error that stopped playback, if any.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Clock returns the tick the device has pulled up to.
func (p *Player) Clock() Tick {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now()
}

// PlaybackPosition returns what the listener hears, in ticks. Returns 0 if
// not playing.
func (p *Player) PlaybackPosition() Tick {
	a := p.backend()
	if a == nil {
		return 0
	}
	return Tick(a.Position() / time.Millisecond)
}

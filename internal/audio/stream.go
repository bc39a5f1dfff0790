// Package audio uses an ebiten audio stream as a real-time clock. The
// stream plays silence; every buffer the device pulls is reported to a
// Puller as a frame count.
package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// bytesPerFrame is one stereo float32 frame.
const bytesPerFrame = 8

// Puller is told how many frames the device consumed.
type Puller interface {
	Pull(frames int)
}

// FinishingPuller can end the stream. When Finished returns true the
// stream returns io.EOF on the next Read.
type FinishingPuller interface {
	Puller
	Finished() bool
}

// StreamReader is the silent stream handed to the audio device.
type StreamReader struct {
	mu     sync.Mutex
	source Puller
	frames int64
}

func NewStreamReader(source Puller) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	n := frames * bytesPerFrame
	clear(p[:n])
	r.frames += int64(frames)
	r.source.Pull(frames)
	if fs, ok := r.source.(FinishingPuller); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

// Frames returns the total frames pulled so far.
func (r *StreamReader) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *StreamReader) Close() error { return nil }

type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer opens a silent stream on the shared audio context. A positive
// buffer sets the device buffer length, which bounds how far ahead of the
// listener a pull can run.
func NewPlayer(sampleRate int, buffer time.Duration, source Puller) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	if buffer > 0 {
		pl.SetBufferSize(buffer)
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns what the listener actually hears, as opposed to the
// frames already pulled.
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

// Frames returns the frames pulled by the device.
func (p *Player) Frames() int64 { return p.reader.Frames() }

func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}

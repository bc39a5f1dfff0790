// Package percussion plays a fixed one-bar drum pattern alongside every
// generator.
package percussion

import (
	"github.com/cbegin/atone-go/internal/errdefs"
	"github.com/cbegin/atone-go/internal/sequencer"
)

// DefaultVelocity is full accent.
const DefaultVelocity = 127

// Lookup returns the named track. Unknown names return the Metronome track
// with an ErrConfiguration.
func Lookup(name string) (Track, error) {
	for _, tr := range tracks {
		if tr.Name == name {
			return tr, nil
		}
	}
	def, _ := Lookup(DefaultTrack)
	return def, errdefs.Configuration("unknown percussion track %q", name)
}

// Names lists the available tracks.
func Names() []string {
	names := make([]string, len(tracks))
	for i, tr := range tracks {
		names[i] = tr.Name
	}
	return names
}

// Player schedules a track once per bar.
type Player struct {
	track    Track
	velocity int
}

// NewPlayer creates a percussion player.
func NewPlayer(track Track, velocity int) (*Player, error) {
	if velocity < 0 || velocity > 127 {
		return nil, errdefs.Invalid("percussion velocity %d out of range 0..127", velocity)
	}
	for i, h := range track.Hits {
		if h.Division <= 0 {
			return nil, errdefs.Invalid("track %q hit %d has division %d", track.Name, i, h.Division)
		}
	}
	return &Player{track: track, velocity: velocity}, nil
}

// Track returns the track being played.
func (p *Player) Track() Track { return p.track }

// PlayBar schedules every hit starting at the scheduler's marker. It does not
// move the marker.
func (p *Player) PlayBar(s *sequencer.Scheduler) {
	at := s.Marker()
	bar := s.BarDuration()
	for _, h := range p.track.Hits {
		dur := bar / sequencer.Tick(h.Division)
		for _, drum := range h.Drums {
			if drum == 0 {
				continue
			}
			s.Play(sequencer.VoicePercussion, int(drum), p.velocity, at, dur)
		}
		at += dur
	}
}

// Length returns the summed duration of a track in bars, as a fraction
// numerator over the least common multiple of its divisions.
func Length(tr Track) (num, den int) {
	den = 1
	for _, h := range tr.Hits {
		den = lcm(den, h.Division)
	}
	for _, h := range tr.Hits {
		num += den / h.Division
	}
	return num, den
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int { return a / gcd(a, b) * b }

package audio

import (
	"io"
	"testing"
)

type countingPuller struct {
	pulls  []int
	finish bool
}

func (c *countingPuller) Pull(frames int) { c.pulls = append(c.pulls, frames) }
func (c *countingPuller) Finished() bool  { return c.finish }

func TestStreamReaderWritesSilence(t *testing.T) {
	src := &countingPuller{}
	r := NewStreamReader(src)
	p := make([]byte, 8*64+3)
	for i := range p {
		p[i] = 0xff
	}
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 8*64 {
		t.Fatalf("n = %d, want %d", n, 8*64)
	}
	for i := 0; i < n; i++ {
		if p[i] != 0 {
			t.Fatalf("byte %d = %#x, want silence", i, p[i])
		}
	}
	if len(src.pulls) != 1 || src.pulls[0] != 64 {
		t.Fatalf("pulls = %v", src.pulls)
	}
	if r.Frames() != 64 {
		t.Fatalf("frames = %d", r.Frames())
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	src := &countingPuller{}
	r := NewStreamReader(src)
	if n, err := r.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Fatalf("read = %d, %v", n, err)
	}
	if len(src.pulls) != 0 {
		t.Fatalf("a partial frame must not pull")
	}
}

func TestStreamReaderEOFWhenFinished(t *testing.T) {
	src := &countingPuller{}
	r := NewStreamReader(src)
	buf := make([]byte, 80)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	src.finish = true
	n, err := r.Read(buf)
	if err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if n != 80 {
		t.Fatalf("final read n = %d", n)
	}
	if r.Frames() != 20 {
		t.Fatalf("frames = %d, want 20", r.Frames())
	}
}

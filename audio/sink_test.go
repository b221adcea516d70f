package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

func TestReader(t *testing.T) {
	a, b := newTestEngine(t), newTestEngine(t)
	fourOnTheFloor(a)
	fourOnTheFloor(b)

	const frames = 3000
	want := render(a, frames, 2)

	// An odd read size makes the reader split float32 values across reads.
	r := NewReader(b, 512, 2)
	buf := make([]byte, 4*2*frames)
	for n := 0; n < len(buf); {
		end := min(n+333, len(buf))
		m, err := r.Read(buf[n:end])
		if err != nil {
			t.Fatal(err)
		}
		n += m
	}
	for i := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		if want[i] != got {
			t.Fatalf("sample %d: want %v, got %v", i, want[i], got)
		}
	}
}

func TestReaderFillsBuffer(t *testing.T) {
	var _ io.Reader = (*Reader)(nil)
	r := NewReader(newTestEngine(t), 0, 0)
	p := make([]byte, 10000)
	n, err := r.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := len(p), n; want != got {
		t.Errorf("want %v bytes, got %v", want, got)
	}
}

func TestSinksRequirePreparedEngine(t *testing.T) {
	if _, err := NewPortaudioSink(NewEngine(), 512, 2); err != ErrNotPrepared {
		t.Errorf("want ErrNotPrepared, got %v", err)
	}
	if _, err := NewOtoSink(NewEngine(), 512, 2); err != ErrNotPrepared {
		t.Errorf("want ErrNotPrepared, got %v", err)
	}
}

package bounce

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/mrdg/drumbox/audio"
	"github.com/youpy/go-wav"
)

func readWAV(t *testing.T, data []byte) []wav.Sample {
	t.Helper()
	r := wav.NewReader(bytes.NewReader(data))
	var all []wav.Sample
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, samples...)
	}
	return all
}

func TestBarFrames(t *testing.T) {
	tests := []struct {
		bars int
		bpm  float64
		want int
	}{
		{1, 120, 96000},
		{2, 120, 192000},
		{1, 60, 192000},
		{1, 1000, 48000},
	}
	for _, test := range tests {
		t.Log(test.bars, test.bpm)
		if want, got := test.want, BarFrames(test.bars, test.bpm, 48000); want != got {
			t.Errorf("want %v frames, got %v", want, got)
		}
	}
}

func TestWriteWAV(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1, 2, -1}
	var buf bytes.Buffer
	if err := WriteWAV(&buf, in, 2, 48000); err != nil {
		t.Fatal(err)
	}
	samples := readWAV(t, buf.Bytes())
	if want, got := 3, len(samples); want != got {
		t.Fatalf("want %v samples, got %v", want, got)
	}
	want := [][2]int{{0, 16384}, {-16384, 32767}, {32767, -32767}}
	for i, s := range samples {
		if want[i] != s.Values {
			t.Errorf("sample %d: want %v, got %v", i, want[i], s.Values)
		}
	}
}

func TestWriteWAVChannels(t *testing.T) {
	if err := WriteWAV(io.Discard, make([]float32, 6), 3, 48000); err == nil {
		t.Errorf("expected an error for three channels")
	}
}

func TestRenderRequiresPrepare(t *testing.T) {
	if _, err := Render(audio.NewEngine(), 10, 2); !errors.Is(err, audio.ErrNotPrepared) {
		t.Errorf("want ErrNotPrepared, got %v", err)
	}
}

func TestBounce(t *testing.T) {
	e := audio.NewEngine()
	if err := e.Prepare(48000, 256); err != nil {
		t.Fatal(err)
	}
	e.SetStep(audio.LaneKick, 0, true, 1)
	e.SetStep(audio.LaneHat, 2, true, 0.5)

	var buf bytes.Buffer
	if err := Bounce(&buf, e, Options{Bars: 1, Bpm: 120}); err != nil {
		t.Fatal(err)
	}
	samples := readWAV(t, buf.Bytes())
	if want, got := 96000, len(samples); want != got {
		t.Fatalf("want %v frames, got %v", want, got)
	}
	var loud bool
	for _, s := range samples[:6000] {
		if s.Values[0] != 0 {
			loud = true
			break
		}
	}
	if !loud {
		t.Errorf("expected the first step to sound")
	}
}

func TestPreview(t *testing.T) {
	src := audio.NewParams()
	src.Store(audio.KickBaseFreq, 50)
	samples, err := Preview(src, audio.LaneKick, 48000, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 38400, len(samples); want != got {
		t.Fatalf("want %v samples, got %v", want, got)
	}
	st := Analyze(samples, 48000)
	t.Log(st)
	if st.Peak <= 0 || st.Peak > 2 {
		t.Errorf("peak out of range: %v", st.Peak)
	}
	if st.Duration <= 0 || st.Duration > DefaultPreviewLength {
		t.Errorf("duration out of range: %v", st.Duration)
	}

	if _, err := Preview(nil, 5, 48000, time.Second); err == nil {
		t.Errorf("expected an error for an invalid lane")
	}
}

func TestAnalyze(t *testing.T) {
	st := Analyze([]float32{0, 0.5, 1, 0.8, 0.4, 0.2, 0.05, 0.005, 0}, 1000)
	if want, got := 1., st.Peak; want != got {
		t.Errorf("want peak %v, got %v", want, got)
	}
	tests := []struct {
		name string
		want time.Duration
		got  time.Duration
	}{
		{"attack", 2 * time.Millisecond, st.Attack},
		{"decay -6dB", 4 * time.Millisecond, st.Decay6},
		{"decay -20dB", 6 * time.Millisecond, st.Decay20},
		{"duration", 6 * time.Millisecond, st.Duration},
	}
	for _, test := range tests {
		t.Log(test.name)
		if test.want != test.got {
			t.Errorf("want %v, got %v", test.want, test.got)
		}
	}
}

func TestAnalyzeFrequency(t *testing.T) {
	const sr = 48000
	samples := make([]float32, sr/2)
	for i := range samples {
		samples[i] = float32(math.Sin(2*math.Pi*100*float64(i)/sr + 0.3))
	}
	if want, got := 100., Analyze(samples, sr).DominantHz; want != got {
		t.Errorf("want %v Hz, got %v", want, got)
	}
	if want, got := (Stats{}), Analyze(nil, sr); want != got {
		t.Errorf("want zero stats, got %+v", got)
	}
}

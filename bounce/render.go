// Package bounce renders an engine without an audio device.
package bounce

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/mrdg/drumbox/audio"
	"github.com/youpy/go-wav"
)

const defaultBlock = 512

// BarFrames returns the length of n bars of 16 steps at the given tempo.
func BarFrames(bars int, bpm, sampleRate float64) int {
	bpm = math.Max(audio.MinBpm, math.Min(audio.MaxBpm, bpm))
	return int(math.Round(float64(bars*audio.Steps) * sampleRate * 60 / bpm / 4))
}

// Render runs a prepared engine for the given number of frames in blocks of
// its maximum block size.
func Render(e *audio.Engine, frames, channels int) ([]float32, error) {
	if !e.Prepared() {
		return nil, audio.ErrNotPrepared
	}
	if channels <= 0 {
		return nil, fmt.Errorf("render: invalid channel count: %d", channels)
	}
	block := e.MaxBlockSize()
	if block <= 0 {
		block = defaultBlock
	}
	out := make([]float32, frames*channels)
	for n := 0; n < frames; n += block {
		m := min(block, frames-n)
		e.Process(out[n*channels:(n+m)*channels], m, channels)
	}
	return out, nil
}

// WriteWAV encodes interleaved samples as 16-bit PCM.
func WriteWAV(w io.Writer, samples []float32, channels int, sampleRate float64) error {
	if channels != 1 && channels != 2 {
		return fmt.Errorf("wav: unsupported channel count: %d", channels)
	}
	frames := len(samples) / channels
	ww := wav.NewWriter(w, uint32(frames), uint16(channels), uint32(sampleRate), 16)

	buf := make([]wav.Sample, frames)
	for f := range buf {
		for c := 0; c < channels; c++ {
			buf[f].Values[c] = toPCM16(samples[f*channels+c])
		}
	}
	if err := ww.WriteSamples(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

func toPCM16(s float32) int {
	v := math.Max(-1, math.Min(1, float64(s)))
	return int(math.Round(v * math.MaxInt16))
}

// Options configures a bounce of the pattern currently held by an engine.
type Options struct {
	Bars     int
	Bpm      float64
	Channels int
}

// Bounce renders opts.Bars bars from the start of the pattern and writes
// them to w as a WAV file.
func Bounce(w io.Writer, e *audio.Engine, opts Options) error {
	if opts.Channels == 0 {
		opts.Channels = 2
	}
	e.SetBpm(opts.Bpm)
	e.Reset()
	e.SetPlaying(true)
	samples, err := Render(e, BarFrames(opts.Bars, opts.Bpm, e.SampleRate()), opts.Channels)
	if err != nil {
		return err
	}
	return WriteWAV(w, samples, opts.Channels, e.SampleRate())
}

// DefaultPreviewLength is the length of a one-shot preview.
const DefaultPreviewLength = 800 * time.Millisecond

// Preview renders a single hit of a lane into a mono buffer. The parameter
// values are copied from src so the preview matches what is playing.
func Preview(src *audio.Params, lane int, sampleRate float64, length time.Duration) ([]float32, error) {
	if audio.LaneName(lane) == "" {
		return nil, fmt.Errorf("preview: invalid lane: %d", lane)
	}
	if length <= 0 {
		length = DefaultPreviewLength
	}
	e := audio.NewEngine()
	if err := e.Prepare(sampleRate, defaultBlock); err != nil {
		return nil, err
	}
	if src != nil {
		dst := e.Params()
		for _, name := range audio.ParamNames() {
			v, _ := src.Get(name)
			if err := dst.Set(name, v); err != nil {
				return nil, err
			}
		}
	}
	e.SetPlaying(false)
	e.Trigger(lane, 1)
	return Render(e, int(length.Seconds()*sampleRate), 1)
}

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gordonklaus/portaudio"
)

// Sink drives an engine from an audio device.
type Sink interface {
	Start() error
	Close() error
}

type PortaudioSink struct {
	stream *portaudio.Stream
}

// NewPortaudioSink opens the default output device. The device callback
// renders straight into the interleaved buffer portaudio hands out.
func NewPortaudioSink(e *Engine, bufferSize, channels int) (*PortaudioSink, error) {
	if !e.Prepared() {
		return nil, ErrNotPrepared
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, channels, e.SampleRate(), bufferSize, func(out []float32) {
		e.Process(out, len(out)/channels, channels)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	return &PortaudioSink{stream: stream}, nil
}

func (s *PortaudioSink) Start() error {
	return s.stream.Start()
}

func (s *PortaudioSink) Close() error {
	s.stream.Stop()
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}

type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
}

// NewOtoSink plays the engine through an oto context. Oto pulls float32
// little endian bytes from an io.Reader that renders whole buffers.
func NewOtoSink(e *Engine, bufferSize, channels int) (*OtoSink, error) {
	if !e.Prepared() {
		return nil, ErrNotPrepared
	}
	sr := e.SampleRate()
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sr),
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(float64(bufferSize) / sr * float64(time.Second)),
	})
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}
	<-ready
	return &OtoSink{
		ctx:    ctx,
		player: ctx.NewPlayer(NewReader(e, bufferSize, channels)),
	}, nil
}

func (s *OtoSink) Start() error {
	s.player.Play()
	return nil
}

func (s *OtoSink) Close() error {
	return s.player.Close()
}

// Reader renders an engine as a stream of interleaved float32 little endian
// samples.
type Reader struct {
	engine   *Engine
	channels int
	samples  []float32
	bytes    []byte
	pending  []byte
}

func NewReader(e *Engine, bufferSize, channels int) *Reader {
	if bufferSize <= 0 {
		bufferSize = 512
	}
	if channels <= 0 {
		channels = 2
	}
	return &Reader{
		engine:   e,
		channels: channels,
		samples:  make([]float32, bufferSize*channels),
		bytes:    make([]byte, 4*bufferSize*channels),
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.render()
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	return n, nil
}

func (r *Reader) render() {
	r.engine.Process(r.samples, len(r.samples)/r.channels, r.channels)
	for i, s := range r.samples {
		binary.LittleEndian.PutUint32(r.bytes[4*i:], math.Float32bits(s))
	}
	r.pending = r.bytes
}

package audio

import (
	"math"

	"github.com/mrdg/drumbox/dsp"
)

const (
	snareSeed = 0xBEEF1234
	hatSeed   = 0xCAFE4321
)

// Snare blends a decaying sine with white noise.
type Snare struct {
	sampleRate float64
	active     bool
	amp        dsp.Decay
	tone       dsp.Decay
	noise      dsp.Noise
	phase      float64
	toneHz     float64
	noiseMix   float64
}

func NewSnare() *Snare {
	s := &Snare{toneHz: 180, noiseMix: 0.75}
	s.amp.Coeff = 0.9975
	s.tone.Coeff = 0.993
	s.Prepare(48000)
	return s
}

func (s *Snare) Prepare(sampleRate float64) {
	s.sampleRate = sampleRate
	s.noise.Seed(snareSeed)
	s.amp.Reset()
	s.tone.Reset()
	s.phase = 0
	s.active = false
}

func (s *Snare) set(decay, toneHz, noiseMix float64) {
	s.amp.Coeff = decay
	s.toneHz = toneHz
	s.noiseMix = noiseMix
}

func (s *Snare) Trigger(velocity float64) {
	s.active = true
	s.amp.Trigger(velocity)
	s.tone.Trigger(1)
	s.phase = 0
}

func (s *Snare) Process() float64 {
	if !s.active {
		return 0
	}
	amp := s.amp.Process()
	t := s.tone.Process()

	s.phase += 2 * math.Pi * s.toneHz / s.sampleRate
	if s.phase >= 2*math.Pi {
		s.phase -= 2 * math.Pi
	}
	tone := t * math.Sin(s.phase)
	out := amp * (s.noiseMix*s.noise.White() + (1-s.noiseMix)*tone)

	if !s.amp.Active() {
		s.active = false
	}
	return out
}

func (s *Snare) Active() bool { return s.active }

// Hat is a burst of high-passed noise.
type Hat struct {
	sampleRate float64
	active     bool
	amp        dsp.Decay
	noise      dsp.Noise
	hp         dsp.HighPass
	cutoff     float64
}

func NewHat() *Hat {
	h := &Hat{}
	h.amp.Coeff = 0.96
	h.Prepare(48000)
	return h
}

func (h *Hat) Prepare(sampleRate float64) {
	h.sampleRate = sampleRate
	h.noise.Seed(hatSeed)
	h.amp.Reset()
	h.hp.Reset()
	h.active = false
	h.cutoff = 0
	h.setCutoff(7000)
}

func (h *Hat) set(decay, cutoff float64) {
	h.amp.Coeff = decay
	h.setCutoff(cutoff)
}

// setCutoff recomputes the filter only when the cutoff changed.
func (h *Hat) setCutoff(hz float64) {
	if hz == h.cutoff {
		return
	}
	h.hp.SetCutoff(hz, h.sampleRate)
	h.cutoff = hz
}

func (h *Hat) Trigger(velocity float64) {
	h.active = true
	h.amp.Trigger(velocity)
}

func (h *Hat) Process() float64 {
	if !h.active {
		return 0
	}
	amp := h.amp.Process()
	out := amp * h.hp.Process(h.noise.White())
	if !h.amp.Active() {
		h.active = false
	}
	return out
}

func (h *Hat) Active() bool { return h.active }

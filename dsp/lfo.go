package dsp

import "math"

type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
)

// LFO is a phase accumulator in [0,1).
type LFO struct {
	Phase float64
}

func (l *LFO) Reset(phase float64) { l.Phase = wrap01(phase) }

// Process advances the phase and returns a value in [-1, 1]. Rate is clamped
// to 0..200 Hz and the square pulse width to 0.01..0.99.
func (l *LFO) Process(rateHz, sampleRate float64, shape Shape, pulse float64) float64 {
	if sampleRate < 1 {
		sampleRate = 1
	}
	l.Phase = wrap01(l.Phase + Clamp(rateHz, 0, 200)/sampleRate)
	switch shape {
	case Triangle:
		return Tri01(l.Phase)
	case Square:
		if l.Phase < Clamp(pulse, 0.01, 0.99) {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * l.Phase)
	}
}

// Tri01 maps a phase in [0,1) to a triangle in [-1,1].
func Tri01(p float64) float64 {
	return 4*math.Abs(wrap01(p)-0.5) - 1
}

func wrap01(p float64) float64 {
	p -= math.Floor(p)
	if p < 0 {
		p++
	}
	if p >= 1 {
		p = 0
	}
	return p
}

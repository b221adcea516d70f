package dsp

import "math"

// LowPass is a one-pole low-pass filter.
type LowPass struct {
	a float64
	z float64
}

func (f *LowPass) SetCutoff(hz, sampleRate float64) {
	f.a = 1 - math.Exp(-2*math.Pi*hz/sampleRate)
}

func (f *LowPass) Process(x float64) float64 {
	f.z += f.a * (x - f.z)
	return f.z
}

func (f *LowPass) Reset() { f.z = 0 }

// HighPass is the complement of a one-pole low-pass at the same cutoff.
type HighPass struct {
	lp LowPass
}

func (f *HighPass) SetCutoff(hz, sampleRate float64) { f.lp.SetCutoff(hz, sampleRate) }

func (f *HighPass) Process(x float64) float64 { return x - f.lp.Process(x) }

func (f *HighPass) Reset() { f.lp.Reset() }

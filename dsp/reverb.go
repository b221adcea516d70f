package dsp

import "math"

var (
	combLengths = [2][4]int{
		{1116, 1188, 1277, 1356},
		{1139, 1211, 1300, 1379},
	}
	reverbAllpassLengths = [2][2]int{
		{225, 341},
		{248, 364},
	}
)

// Reverb is a short Schroeder reverb: four parallel damped combs per channel
// into two series allpasses. Mono in, stereo out.
type Reverb struct {
	sampleRate float64
	wet        float64
	feedback   float64
	damp       float64
	combs      [2][4]Comb
	allpasses  [2][2]Allpass
}

func NewReverb() *Reverb {
	var r Reverb
	for c := range r.combs {
		for n, length := range combLengths[c] {
			r.combs[c][n] = NewComb(length)
		}
		for n, length := range reverbAllpassLengths[c] {
			r.allpasses[c][n] = NewAllpass(length, 0.5)
		}
	}
	r.SetParams(0, 0.5, 0.5)
	return &r
}

func (r *Reverb) Prepare(sampleRate float64) {
	r.sampleRate = math.Max(sampleRate, 8000)
	r.Reset()
}

func (r *Reverb) Reset() {
	for c := range r.combs {
		for n := range r.combs[c] {
			r.combs[c][n].Reset()
		}
		for n := range r.allpasses[c] {
			r.allpasses[c][n].Reset()
		}
	}
}

// SetParams takes wet amount, room size and tone, all in [0,1]. Lower tone
// means more damping in the comb loops.
func (r *Reverb) SetParams(amount, size, tone float64) {
	r.wet = Clamp01(amount)
	r.damp = Clamp(0.05+(1-tone)*0.7, 0, 0.99)
	r.feedback = Clamp(0.25+Clamp01(size)*0.65, 0, 0.98)
}

func (r *Reverb) Process(x float64) (float64, float64) {
	in := x * 0.25
	var out [2]float64
	for c := range r.combs {
		var y float64
		for n := range r.combs[c] {
			y += r.combs[c][n].Process(in, r.feedback, r.damp)
		}
		for n := range r.allpasses[c] {
			y = r.allpasses[c][n].Process(y)
		}
		out[c] = y * 0.25 * r.wet
	}
	return out[0], out[1]
}

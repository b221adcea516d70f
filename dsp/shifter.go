package dsp

import "math"

type allpass1 struct {
	a, z float64
}

func (ap *allpass1) process(x float64) float64 {
	y := ap.z - ap.a*x
	ap.z = x + ap.a*y
	return y
}

var (
	hilbertI = [4]float64{0.041666667, 0.138888889, 0.333333333, 0.666666667}
	hilbertQ = [4]float64{0.090909091, 0.230769231, 0.5, 0.818181818}
)

// FreqShifter is a single-sideband frequency shifter built on a 4+4 stage
// allpass Hilbert approximation. Positive shifts select the upper sideband.
type FreqShifter struct {
	sampleRate float64
	shiftHz    float64
	phase      float64
	delay      float64
	i, q       [4]allpass1
}

func (s *FreqShifter) Prepare(sampleRate float64) {
	s.sampleRate = math.Max(sampleRate, 8000)
	s.Reset()
}

func (s *FreqShifter) Reset() {
	s.phase = 0
	s.delay = 0
	for n := range s.i {
		s.i[n] = allpass1{a: hilbertI[n]}
		s.q[n] = allpass1{a: hilbertQ[n]}
	}
}

func (s *FreqShifter) SetShift(hz float64) {
	s.shiftHz = Clamp(hz, -2000, 2000)
}

func (s *FreqShifter) Shift() float64 { return s.shiftHz }

func (s *FreqShifter) Process(x float64) float64 {
	i, q := x, x
	for n := range s.i {
		i = s.i[n].process(i)
		q = s.q[n].process(q)
	}
	// one sample of delay on the I path aligns it with Q
	aligned := s.delay
	s.delay = i

	s.phase += 2 * math.Pi * math.Abs(s.shiftHz) / s.sampleRate
	if s.phase > 2*math.Pi {
		s.phase -= 2 * math.Pi
	}
	c, sn := math.Cos(s.phase), math.Sin(s.phase)
	if s.shiftHz >= 0 {
		return aligned*c - q*sn
	}
	return aligned*c + q*sn
}

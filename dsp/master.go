package dsp

import "math"

const (
	masterLowHz  = 200
	masterHighHz = 3000
)

// Master is a three band EQ, gain stage and clipper followed by a safety
// clamp to [-2, 2].
type Master struct {
	sampleRate float64
	low        [2]LowPass
	high       [2]HighPass
	gains      [3]float64
	clipOn     bool
	hardClip   bool
}

func NewMaster() *Master {
	m := &Master{clipOn: true}
	m.SetEQ(0, 0, 0)
	return m
}

func (m *Master) Prepare(sampleRate float64) {
	m.sampleRate = math.Max(sampleRate, 8000)
	for c := range m.low {
		m.low[c].SetCutoff(masterLowHz, m.sampleRate)
		m.high[c].SetCutoff(masterHighHz, m.sampleRate)
	}
	m.Reset()
}

func (m *Master) Reset() {
	for c := range m.low {
		m.low[c].Reset()
		m.high[c].Reset()
	}
}

// Finite reports whether every band filter holds a finite state.
func (m *Master) Finite() bool {
	for c := range m.low {
		if !finite(m.low[c].z) || !finite(m.high[c].lp.z) {
			return false
		}
	}
	return true
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// SetEQ sets the low, mid and high band gains in dB, clamped to ±24.
func (m *Master) SetEQ(lowDb, midDb, highDb float64) {
	for n, db := range [3]float64{lowDb, midDb, highDb} {
		m.gains[n] = DbToLin(Clamp(db, -24, 24))
	}
}

// SetClip enables the clipper. Mode 0 is soft, 1 is hard.
func (m *Master) SetClip(on bool, mode int) {
	m.clipOn = on
	m.hardClip = mode == 1
}

func (m *Master) Process(l, r, gain float64) (float64, float64) {
	return m.channel(0, l, gain), m.channel(1, r, gain)
}

func (m *Master) channel(c int, x, gain float64) float64 {
	low := m.low[c].Process(x)
	high := m.high[c].Process(x)
	mid := x - low - high
	y := (low*m.gains[0] + mid*m.gains[1] + high*m.gains[2]) * gain
	if m.clipOn {
		if m.hardClip {
			y = HardClip(y)
		} else {
			y = SoftClip(y)
		}
	}
	return SafeClamp(y)
}

// SafeClamp limits x to [-2, 2] and maps non-finite values to 0.
func SafeClamp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return Clamp(x, -2, 2)
}

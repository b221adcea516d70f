package dsp

import "math"

// Level at which a coefficient's time constant is measured (-60 dB).
const endLevel = 0.001

const maxCoeff = 0.999999999

// DecayCoeffFromMs returns the per-sample multiplier that takes a decay
// envelope to -60 dB in ms milliseconds.
func DecayCoeffFromMs(ms, sampleRate float64) float64 {
	return coeffFromMs(Clamp(ms, 1, 10000), sampleRate)
}

// AttackCoeffFromMs is DecayCoeffFromMs for the attack stage, which allows
// sub-millisecond times.
func AttackCoeffFromMs(ms, sampleRate float64) float64 {
	return coeffFromMs(Clamp(ms, 0.01, 1000), sampleRate)
}

func DecayMsFromCoeff(a, sampleRate float64) float64 {
	return Clamp(msFromCoeff(a, sampleRate), 1, 10000)
}

func AttackMsFromCoeff(a, sampleRate float64) float64 {
	return Clamp(msFromCoeff(a, sampleRate), 0.01, 1000)
}

func coeffFromMs(ms, sampleRate float64) float64 {
	n := math.Max(sampleRate, 8000) * ms / 1000
	return Clamp(math.Exp(math.Log(endLevel)/n), 0, maxCoeff)
}

func msFromCoeff(a, sampleRate float64) float64 {
	a = Clamp(a, 1e-9, maxCoeff)
	n := math.Log(endLevel) / math.Log(a)
	return n / math.Max(sampleRate, 8000) * 1000
}

func DbToLin(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinToDb floors silence at -120 dB.
func LinToDb(lin float64) float64 {
	if lin <= 1e-6 {
		return -120
	}
	return 20 * math.Log10(lin)
}

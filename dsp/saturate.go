package dsp

import "math"

// SoftClip is a rational tanh approximation with unity slope at 0.
func SoftClip(x float64) float64 {
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

func HardClip(x float64) float64 {
	return Clamp(x, -1, 1)
}

// Foldback reflects x back into [-threshold, threshold] with a triangular
// fold of period 4*threshold.
func Foldback(x, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	if x >= -threshold && x <= threshold {
		return x
	}
	period := 4 * threshold
	t := math.Mod(x+threshold, period)
	if t < 0 {
		t += period
	}
	if t < 2*threshold {
		return t - threshold
	}
	return 3*threshold - t
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Clamp01(x float64) float64 { return Clamp(x, 0, 1) }

// ClipMode selects the saturator used by Clip.
type ClipMode int

const (
	ClipTanh ClipMode = iota
	ClipHard
	ClipFold
)

func (m ClipMode) String() string {
	switch m {
	case ClipHard:
		return "hard"
	case ClipFold:
		return "fold"
	default:
		return "tanh"
	}
}

func Clip(x float64, mode ClipMode) float64 {
	switch mode {
	case ClipHard:
		return HardClip(x)
	case ClipFold:
		return Foldback(x, 1)
	default:
		return math.Tanh(x)
	}
}

package dsp

import (
	"math"
	"testing"
)

func TestFxCleanBypass(t *testing.T) {
	fx := NewFxSection()
	fx.Prepare(48000)
	p := DefaultFxParams
	p.CleanDirty = 0
	p.Inflator = 1
	p.Stereo = 1
	p.ShiftHz = 300
	fx.Set(p)

	noise := NewNoise(7)
	for i := 0; i < 1000; i++ {
		l, r := noise.White(), noise.White()
		gotL, gotR := fx.Process(l, r)
		if gotL != l || gotR != r {
			t.Fatalf("clean mix should pass input through: want (%v, %v), got (%v, %v)", l, r, gotL, gotR)
		}
	}
}

func TestFxNeutral(t *testing.T) {
	fx := NewFxSection()
	fx.Prepare(48000)
	p := DefaultFxParams
	p.Tone = 1
	fx.Set(p)

	noise := NewNoise(3)
	for i := 0; i < 1000; i++ {
		l, r := noise.White(), noise.White()
		gotL, gotR := fx.Process(l, r)
		if gotL != l || gotR != r {
			t.Fatalf("neutral settings should not touch the signal at sample %d", i)
		}
	}
}

func TestFxClampsParams(t *testing.T) {
	fx := NewFxSection()
	fx.Prepare(44100)
	fx.Set(FxParams{
		ShiftHz:     1e6,
		Stereo:      4,
		Diffusion:   -1,
		CleanDirty:  2,
		Tone:        -3,
		EnvAttack:   2,
		EnvDecay:    2,
		EnvVol:      5,
		Disperse:    9,
		Inflator:    9,
		InflatorMix: -9,
		OTT:         3,
	})
	p := fx.Params()
	if want, got := 2000.0, p.ShiftHz; want != got {
		t.Errorf("shift: want %v, got %v", want, got)
	}
	for name, v := range map[string]float64{
		"stereo":    p.Stereo,
		"diffusion": p.Diffusion,
		"clean":     p.CleanDirty,
		"tone":      p.Tone,
		"envVol":    p.EnvVol,
		"disperse":  p.Disperse,
		"inflator":  p.Inflator,
		"mix":       p.InflatorMix,
		"ott":       p.OTT,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s not clamped to [0,1]: %v", name, v)
		}
	}
	if p.EnvDecay >= 1 || p.EnvAttack >= 1 {
		t.Errorf("envelope coefficients should stay below 1: %v %v", p.EnvAttack, p.EnvDecay)
	}
}

func TestFxExtremesStayFinite(t *testing.T) {
	fx := NewFxSection()
	fx.Prepare(48000)
	fx.Set(FxParams{
		ShiftHz:     -2000,
		Stereo:      1,
		Diffusion:   1,
		CleanDirty:  1,
		Tone:        0,
		EnvAttack:   0.5,
		EnvDecay:    0.9999,
		EnvVol:      1,
		Disperse:    1,
		Inflator:    1,
		InflatorMix: 1,
		OTT:         1,
	})
	noise := NewNoise(11)
	for i := 0; i < 48000; i++ {
		if i%6000 == 0 {
			fx.TriggerEnv(1)
		}
		l, r := fx.Process(noise.White(), noise.White())
		if math.IsNaN(l) || math.IsNaN(r) || math.Abs(l) > 100 || math.Abs(r) > 100 {
			t.Fatalf("unstable output at sample %d: %v %v", i, l, r)
		}
	}
}

func TestShifterBounded(t *testing.T) {
	var s FreqShifter
	s.Prepare(48000)
	s.SetShift(500)
	phase := 0.0
	var peak float64
	for i := 0; i < 48000; i++ {
		phase += 2 * math.Pi * 1000 / 48000
		y := s.Process(math.Sin(phase))
		peak = math.Max(peak, math.Abs(y))
	}
	if peak == 0 || peak > 3 {
		t.Errorf("shifted sine has implausible peak %v", peak)
	}
}

func TestOTTBypass(t *testing.T) {
	var o OTT
	o.Prepare(48000)
	o.SetAmount(0)
	if l, r := o.Process(0.3, -0.2); l != 0.3 || r != -0.2 {
		t.Errorf("zero amount should bypass, got %v %v", l, r)
	}
}

func TestOTTLiftsQuietSignal(t *testing.T) {
	var o OTT
	o.Prepare(48000)
	o.SetAmount(1)
	phase := 0.0
	var in, out float64
	for i := 0; i < 48000; i++ {
		phase += 2 * math.Pi * 800 / 48000
		x := 0.01 * math.Sin(phase)
		l, _ := o.Process(x, x)
		if i > 24000 {
			in += x * x
			out += l * l
		}
	}
	if out <= in {
		t.Errorf("upward compression should raise a quiet signal: in %v, out %v", in, out)
	}
}

package dsp

import "math"

var disperseLengths = [2][4]int{
	{113, 151, 197, 269},
	{127, 163, 211, 281},
}

// FxParams holds the FX section controls. Amounts are in [0,1].
type FxParams struct {
	ShiftHz     float64
	Stereo      float64
	Diffusion   float64
	CleanDirty  float64
	Tone        float64
	EnvAttack   float64
	EnvDecay    float64
	EnvVol      float64
	Disperse    float64
	Inflator    float64
	InflatorMix float64
	OTT         float64
}

// DefaultFxParams leaves the signal untouched apart from the tone filter.
var DefaultFxParams = FxParams{
	CleanDirty:  1,
	Tone:        0.5,
	EnvAttack:   0.05,
	EnvDecay:    0.995,
	InflatorMix: 0.5,
}

// FxSection is the stereo effect chain: shifter, mid/side widener, allpass
// disperser, inflator, OTT, transient envelope, tone low-pass and a
// clean/dirty mix. Stages at their neutral value are skipped.
type FxSection struct {
	sampleRate float64
	p          FxParams
	shifter    [2]FreqShifter
	disperse   [2][4]Allpass
	ott        OTT
	env        AttackDecay
	envVel     float64
	tone       [2]LowPass
}

func NewFxSection() *FxSection {
	fx := &FxSection{sampleRate: 48000, envVel: 1}
	for c := range fx.disperse {
		for n, length := range disperseLengths[c] {
			fx.disperse[c][n] = NewAllpass(length, 0)
		}
	}
	fx.p = DefaultFxParams
	return fx
}

func (fx *FxSection) Prepare(sampleRate float64) {
	fx.sampleRate = math.Max(sampleRate, 8000)
	for c := range fx.shifter {
		fx.shifter[c].Prepare(sampleRate)
	}
	fx.ott.Prepare(sampleRate)
	fx.Reset()
	fx.Set(fx.p)
	fx.setTone(fx.p.Tone)
}

func (fx *FxSection) Reset() {
	for c := range fx.disperse {
		for n := range fx.disperse[c] {
			fx.disperse[c][n].Reset()
		}
		fx.shifter[c].Reset()
		fx.tone[c].Reset()
	}
	fx.env.Reset()
	fx.envVel = 1
	fx.ott.Reset()
}

// Set applies p, clamping every field into its valid range.
func (fx *FxSection) Set(p FxParams) {
	p.Stereo = Clamp01(p.Stereo)
	p.Diffusion = Clamp01(p.Diffusion)
	p.CleanDirty = Clamp01(p.CleanDirty)
	p.Tone = Clamp01(p.Tone)
	p.EnvAttack = Clamp(p.EnvAttack, 0, 0.999999)
	p.EnvDecay = Clamp(p.EnvDecay, 0, 0.999999)
	p.EnvVol = Clamp01(p.EnvVol)
	p.Disperse = Clamp01(p.Disperse)
	p.Inflator = Clamp01(p.Inflator)
	p.InflatorMix = Clamp01(p.InflatorMix)
	p.OTT = Clamp01(p.OTT)

	for c := range fx.shifter {
		fx.shifter[c].SetShift(p.ShiftHz)
	}
	p.ShiftHz = fx.shifter[0].Shift()

	fb := p.Diffusion * 0.85
	for c := range fx.disperse {
		for n := range fx.disperse[c] {
			fx.disperse[c][n].Feedback = fb
		}
	}
	if p.Tone != fx.p.Tone {
		fx.setTone(p.Tone)
	}
	fx.env.Attack = p.EnvAttack
	fx.env.Decay = p.EnvDecay
	fx.ott.SetAmount(p.OTT)
	fx.p = p
}

// setTone maps tone 0..1 to a low-pass cutoff of 700 Hz to 17.7 kHz, kept
// below 0.45 of Nyquist.
func (fx *FxSection) setTone(tone float64) {
	cutoff := math.Min(700+tone*17000, 0.45*0.5*fx.sampleRate)
	for c := range fx.tone {
		fx.tone[c].SetCutoff(cutoff, fx.sampleRate)
	}
}

func (fx *FxSection) Params() FxParams { return fx.p }

// TriggerEnv restarts the transient envelope from zero at the given velocity.
func (fx *FxSection) TriggerEnv(velocity float64) {
	fx.envVel = Clamp01(velocity)
	fx.env.Trigger(0)
}

func (fx *FxSection) Process(inL, inR float64) (float64, float64) {
	p := &fx.p
	l, r := inL, inR

	if math.Abs(p.ShiftHz) > 0.001 {
		l = fx.shifter[0].Process(l)
		r = fx.shifter[1].Process(r)
	}

	if p.Stereo > 0.0001 {
		mid := 0.5 * (l + r)
		side := 0.5 * (l - r) * (1 + p.Stereo)
		l = l*(1-p.Stereo) + (mid+side)*p.Stereo
		r = r*(1-p.Stereo) + (mid-side)*p.Stereo
	}

	if p.Disperse > 0.0001 {
		dl, dr := l, r
		for n := range fx.disperse[0] {
			dl = fx.disperse[0][n].Process(dl)
			dr = fx.disperse[1][n].Process(dr)
		}
		l = l*(1-p.Disperse) + dl*p.Disperse
		r = r*(1-p.Disperse) + dr*p.Disperse
	}

	if p.Inflator > 0.0001 {
		drive := 1 + p.Inflator*12
		m := p.InflatorMix
		l = l*(1-m) + SoftClip(l*drive)*m
		r = r*(1-m) + SoftClip(r*drive)*m
	}

	l, r = fx.ott.Process(l, r)

	if p.EnvVol > 0.0001 && fx.env.Active() {
		g := 1 + p.EnvVol*fx.envVel*Clamp01(fx.env.Process())
		l *= g
		r *= g
	}

	if p.Tone < 0.999 {
		l = fx.tone[0].Process(l)
		r = fx.tone[1].Process(r)
	}

	m := p.CleanDirty
	return inL*(1-m) + l*m, inR*(1-m) + r*m
}

package audio

import (
	"math"

	"github.com/mrdg/drumbox/dsp"
)

type oscType int

const (
	oscSine oscType = iota
	oscTriangle
	oscSquare
	oscNoise
)

type lfoTarget int

const (
	lfoPitch lfoTarget = iota
	lfoDrive
	lfoCutoff
	lfoPhase
)

type chainParams struct {
	mix   float64
	drive float64
	lpHz  float64
	asym  float64
	mode  dsp.ClipMode
}

type layerParams struct {
	on      bool
	osc     oscType
	freqHz  float64
	phase01 float64
	drive   float64
	attack  float64
	decay   float64
	vol     float64
}

type lfoParams struct {
	amount float64
	rateHz float64
	shape  dsp.Shape
	target lfoTarget
	pulse  float64
}

// kickParams is the kick configuration for one buffer.
type kickParams struct {
	decay      float64
	attackHz   float64
	baseHz     float64
	pitchDecay float64
	drive      float64
	driveDecay float64
	click      float64
	preHPHz    float64
	postGain   float64
	postHPHz   float64
	postLPHz   float64
	oversample bool
	clip       dsp.ClipMode

	chains [2]chainParams

	tok         float64
	tokHPHz     float64
	crunch      float64
	tailDecay   float64
	tailMix     float64
	tailFreqMul float64
	subMix      float64
	subLPHz     float64
	feedback    float64

	layers [2]layerParams
	lfo    lfoParams
}

type kickLayer struct {
	env   dsp.AttackDecay
	phase float64 // [0,1)
}

// Kick is a pitch swept sine body with a triangle tail, a noise click and two
// auxiliary oscillator layers. The body is split into a clean sub path and a
// dirty path through two parallel distortion chains.
type Kick struct {
	sampleRate float64
	srDist     float64 // rate of the distortion stage, doubled when oversampling
	p          kickParams

	active    bool
	velocity  float64
	phase     float64 // body phase in radians
	tailPhase float64

	amp   dsp.Decay
	pitch dsp.Decay
	drive dsp.Decay
	tail  dsp.Decay

	seed   uint32
	noise  dsp.Noise
	layers [2]kickLayer
	lfo    dsp.LFO

	preHP   dsp.HighPass
	subLP   dsp.LowPass
	chainLP [2]dsp.LowPass
	tokHP   dsp.HighPass
	postLP  dsp.LowPass
	postHP  dsp.HighPass
	os      dsp.Oversampler

	prevDirty float64
	driveGain float64
	distortFn func(float64) float64
}

func NewKick() *Kick {
	k := &Kick{seed: 0x12345678}
	k.distortFn = k.distort
	k.set(&kickParams{
		decay:       0.9995,
		attackHz:    120,
		baseHz:      55,
		pitchDecay:  0.993,
		drive:       14,
		driveDecay:  0.99,
		click:       0.7,
		preHPHz:     30,
		postGain:    0.85,
		postHPHz:    25,
		postLPHz:    8000,
		chains:      [2]chainParams{{0.7, 1, 9000, 0, dsp.ClipTanh}, {0.3, 1.6, 5200, 0.2, dsp.ClipTanh}},
		tok:         0.2,
		tokHPHz:     180,
		crunch:      0.15,
		tailDecay:   0.9992,
		tailMix:     0.45,
		tailFreqMul: 1,
		subMix:      0.35,
		subLPHz:     180,
		feedback:    0.08,
		lfo:         lfoParams{rateHz: 2, pulse: 0.5},
	})
	k.Prepare(48000)
	return k
}

func (k *Kick) Prepare(sampleRate float64) {
	k.sampleRate = sampleRate
	k.active = false
	k.phase, k.tailPhase = 0, 0
	k.amp.Reset()
	k.pitch.Reset()
	k.drive.Reset()
	k.tail.Reset()
	for i := range k.layers {
		k.layers[i].env.Reset()
		k.layers[i].phase = 0
	}
	k.preHP.Reset()
	k.subLP.Reset()
	for i := range k.chainLP {
		k.chainLP[i].Reset()
	}
	k.tokHP.Reset()
	k.postLP.Reset()
	k.postHP.Reset()
	k.os.Reset()
	k.prevDirty = 0
	k.set(&k.p)
}

// set applies a buffer's configuration and refreshes the filter coefficients.
func (k *Kick) set(p *kickParams) {
	k.p = *p
	k.amp.Coeff = p.decay
	k.pitch.Coeff = p.pitchDecay
	k.drive.Coeff = p.driveDecay
	k.tail.Coeff = p.tailDecay
	for i := range k.layers {
		k.layers[i].env.Attack = p.layers[i].attack
		k.layers[i].env.Decay = p.layers[i].decay
	}
	if k.sampleRate == 0 {
		return
	}
	k.srDist = k.sampleRate
	if p.oversample {
		k.srDist *= 2
	}
	k.preHP.SetCutoff(p.preHPHz, k.sampleRate)
	k.subLP.SetCutoff(p.subLPHz, k.sampleRate)
	for i := range k.chainLP {
		k.chainLP[i].SetCutoff(p.chains[i].lpHz, k.srDist)
	}
	k.tokHP.SetCutoff(p.tokHPHz, k.srDist)
	k.postLP.SetCutoff(p.postLPHz, k.srDist)
	k.postHP.SetCutoff(p.postHPHz, k.srDist)
}

func (k *Kick) Trigger(velocity float64) {
	k.active = true
	k.velocity = velocity
	k.phase, k.tailPhase = 0, 0
	k.amp.Trigger(velocity)
	k.pitch.Trigger(1)
	k.drive.Trigger(1)
	k.tail.Trigger(1)

	k.seed = dsp.NextSeed(k.seed)
	k.noise.Seed(k.seed)
	k.lfo.Reset(0)
	for i := range k.layers {
		l := &k.layers[i]
		l.phase = 0
		if k.p.layers[i].on {
			l.env.Trigger(0)
		} else {
			l.env.Reset()
		}
	}
}

func (k *Kick) Active() bool { return k.active }

func (k *Kick) Process() float64 {
	if !k.active {
		return 0
	}
	p := &k.p

	var mod float64
	if p.lfo.amount > 0 {
		mod = k.lfo.Process(p.lfo.rateHz, k.sampleRate, p.lfo.shape, p.lfo.pulse) * p.lfo.amount
	}

	amp := k.amp.Process()
	pe := k.pitch.Process()
	de := k.drive.Process()
	te := k.tail.Process()

	freq := p.baseHz + (p.attackHz-p.baseHz)*pe
	if p.lfo.target == lfoPitch && mod != 0 {
		freq *= math.Exp2(mod)
	}
	k.phase += 2 * math.Pi * freq / k.sampleRate
	if k.phase >= 2*math.Pi {
		k.phase = math.Mod(k.phase, 2*math.Pi)
	}
	k.tailPhase += p.baseHz * p.tailFreqMul / k.sampleRate
	if k.tailPhase >= 1 {
		k.tailPhase -= math.Floor(k.tailPhase)
	}

	x := amp * math.Sin(k.phase)
	x += dsp.Tri01(k.tailPhase) * te * p.tailMix * k.velocity
	x += k.noise.White() * de * p.click * k.velocity
	x += k.layer(0, mod) + k.layer(1, mod)

	hp := k.preHP.Process(x)
	sub := k.subLP.Process(hp)

	k.driveGain = 1 + de*p.drive
	switch {
	case mod == 0:
	case p.lfo.target == lfoDrive:
		k.driveGain *= 1 + 0.75*mod
	case p.lfo.target == lfoCutoff:
		k.postLP.SetCutoff(p.postLPHz*math.Exp2(2*mod), k.srDist)
	}

	var dirty float64
	if p.oversample {
		dirty = k.os.Process(hp, k.distortFn)
	} else {
		dirty = k.distort(hp)
	}

	out := dsp.SoftClip(sub*p.subMix+dirty*(1-p.subMix)) * p.postGain

	if !k.amp.Active() && !k.layers[0].env.Active() && !k.layers[1].env.Active() {
		k.active = false
	}
	return out
}

func (k *Kick) layer(i int, mod float64) float64 {
	lp := &k.p.layers[i]
	l := &k.layers[i]
	if !lp.on {
		// a layer switched off mid hit must not hold the voice open
		l.env.Reset()
		return 0
	}
	if !l.env.Active() {
		return 0
	}
	l.phase += lp.freqHz / k.sampleRate
	l.phase -= math.Floor(l.phase)

	ph := l.phase + lp.phase01
	if k.p.lfo.target == lfoPhase {
		ph += 0.5 * mod
	}
	ph -= math.Floor(ph)

	var osc float64
	switch lp.osc {
	case oscTriangle:
		osc = dsp.Tri01(ph)
	case oscSquare:
		osc = 1
		if ph >= 0.5 {
			osc = -1
		}
	case oscNoise:
		osc = k.noise.White()
	default:
		osc = math.Sin(2 * math.Pi * ph)
	}
	if lp.drive > 0 {
		osc = dsp.SoftClip(osc * (1 + 9*lp.drive))
	}
	return osc * l.env.Process() * lp.vol * k.velocity
}

// distort runs one sample of the dirty path at the distortion rate.
func (k *Kick) distort(s float64) float64 {
	p := &k.p
	d := s*k.driveGain + p.feedback*k.prevDirty

	var y float64
	for i := range k.chainLP {
		c := &p.chains[i]
		v := d * c.drive
		if v >= 0 {
			v *= 1 + c.asym
		} else {
			v *= 1 - c.asym
		}
		y += k.chainLP[i].Process(dsp.Clip(v, c.mode)) * c.mix
	}
	y += k.tokHP.Process(s) * p.tok

	if c := p.crunch; c > 0 {
		y = y*(1-c) + dsp.Foldback(y*(1+3*c), 0.6)*c
	}
	y = k.postHP.Process(k.postLP.Process(y))
	k.prevDirty = y
	return y
}

package dsp

import "math"

const (
	ottLowHz   = 180
	ottHighHz  = 2600
	ottUp      = 0.063 // about -24 dB
	ottDown    = 0.355 // about -9 dB
	ottAttack  = 2.0   // ms
	ottRelease = 60.0  // ms
)

type ottBand struct {
	low  LowPass
	high HighPass
	env  [3]float64 // low, mid, high
}

// OTT is a three band upward/downward compressor driven by a single amount.
type OTT struct {
	sampleRate float64
	amount     float64
	attack     float64
	release    float64
	ch         [2]ottBand
}

func (o *OTT) Prepare(sampleRate float64) {
	o.sampleRate = math.Max(sampleRate, 8000)
	for c := range o.ch {
		o.ch[c].low.SetCutoff(ottLowHz, o.sampleRate)
		o.ch[c].high.SetCutoff(ottHighHz, o.sampleRate)
	}
	o.attack = smoothingCoeff(ottAttack, o.sampleRate)
	o.release = smoothingCoeff(ottRelease, o.sampleRate)
	o.Reset()
}

func (o *OTT) Reset() {
	for c := range o.ch {
		o.ch[c].low.Reset()
		o.ch[c].high.Reset()
		o.ch[c].env = [3]float64{}
	}
}

func (o *OTT) SetAmount(amount float64) { o.amount = Clamp01(amount) }

func (o *OTT) Process(l, r float64) (float64, float64) {
	if o.amount <= 0.0001 {
		return l, r
	}
	trim := 1 - 0.35*o.amount
	return o.band(0, l) * trim, o.band(1, r) * trim
}

func (o *OTT) band(c int, x float64) float64 {
	b := &o.ch[c]
	low := b.low.Process(x)
	high := b.high.Process(x)
	bands := [3]float64{low, x - low - high, high}

	var y float64
	for n, v := range bands {
		b.env[n] = o.follow(b.env[n], math.Abs(v))
		y += v * o.gain(b.env[n])
	}
	return y
}

func (o *OTT) follow(z, x float64) float64 {
	c := o.release
	if x > z {
		c = o.attack
	}
	return z*c + x*(1-c)
}

func (o *OTT) gain(env float64) float64 {
	up, down := 1.0, 1.0
	if env < ottUp {
		up = 1 + o.amount*Clamp(ottUp/(env+1e-6)-1, 0, 6)
	}
	if env > ottDown {
		over := (env - ottDown) / ottDown
		down = Clamp(1/(1+o.amount*2.5*over), 0.25, 1)
	}
	return Clamp(up*down, 0.25, 6)
}

// smoothingCoeff converts a time constant in ms to a one-pole smoothing coefficient.
func smoothingCoeff(ms, sampleRate float64) float64 {
	t := math.Max(0.0001, ms*0.001)
	return Clamp(math.Exp(-1/(t*sampleRate)), 0, 0.999999)
}

package dsp

// Allpass is a fixed-length Schroeder allpass section on a ring buffer.
type Allpass struct {
	buf      []float64
	idx      int
	Feedback float64
}

func NewAllpass(length int, feedback float64) Allpass {
	return Allpass{buf: make([]float64, length), Feedback: feedback}
}

func (a *Allpass) Process(x float64) float64 {
	b := a.buf[a.idx]
	y := -x + b
	a.buf[a.idx] = x + b*a.Feedback
	if a.idx++; a.idx >= len(a.buf) {
		a.idx = 0
	}
	return y
}

func (a *Allpass) Reset() {
	clear(a.buf)
	a.idx = 0
}

// Comb is a feedback comb filter with a damping low-pass in the loop.
type Comb struct {
	buf   []float64
	idx   int
	store float64
}

func NewComb(length int) Comb {
	return Comb{buf: make([]float64, length)}
}

func (c *Comb) Process(x, feedback, damp float64) float64 {
	out := c.buf[c.idx]
	c.store = out*(1-damp) + c.store*damp
	c.buf[c.idx] = x + c.store*feedback
	if c.idx++; c.idx >= len(c.buf) {
		c.idx = 0
	}
	return out
}

func (c *Comb) Reset() {
	clear(c.buf)
	c.idx = 0
	c.store = 0
}

package dsp

const defaultSeed = 0x12345678

// Noise is a xorshift32 white noise generator.
type Noise struct {
	state uint32
}

func NewNoise(seed uint32) Noise {
	var n Noise
	n.Seed(seed)
	return n
}

// Seed resets the generator. A zero seed is replaced by the default seed
// because xorshift never leaves the zero state.
func (n *Noise) Seed(seed uint32) {
	if seed == 0 {
		seed = defaultSeed
	}
	n.state = seed
}

func (n *Noise) Next() uint32 {
	x := n.state
	if x == 0 {
		x = defaultSeed
	}
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	n.state = x
	return x
}

// White returns a uniform sample in [-1, 1).
func (n *Noise) White() float64 {
	u := float64(n.Next()&0xFFFFFF) / 16777216.0
	return 2*u - 1
}

// NextSeed advances seed by one LCG step.
func NextSeed(seed uint32) uint32 {
	return seed*1664525 + 1013904223
}

package dsp

// Oversampler runs a function at twice the sample rate using linear
// interpolation and decimates by averaging the two outputs.
type Oversampler struct {
	prev float64
}

func (o *Oversampler) Process(x float64, f func(float64) float64) float64 {
	mid := 0.5 * (o.prev + x)
	o.prev = x
	y0 := f(mid)
	y1 := f(x)
	return 0.5 * (y0 + y1)
}

func (o *Oversampler) Reset() { o.prev = 0 }

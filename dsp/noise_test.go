package dsp

import "testing"

func TestNoiseSequence(t *testing.T) {
	n := NewNoise(0)
	if want, got := uint32(defaultSeed), n.state; want != got {
		t.Errorf("zero seed should use the default: want %x, got %x", want, got)
	}

	x := uint32(defaultSeed)
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	if want, got := x, n.Next(); want != got {
		t.Errorf("want %x, got %x", want, got)
	}
}

func TestNoiseRange(t *testing.T) {
	n := NewNoise(0xBEEF1234)
	var sum float64
	const count = 100000
	for i := 0; i < count; i++ {
		v := n.White()
		if v < -1 || v >= 1 {
			t.Fatalf("white noise out of range: %v", v)
		}
		sum += v
	}
	if mean := sum / count; mean > 0.02 || mean < -0.02 {
		t.Errorf("white noise should be zero mean, got %v", mean)
	}
}

func TestNoiseDeterministic(t *testing.T) {
	a, b := NewNoise(42), NewNoise(42)
	for i := 0; i < 100; i++ {
		if a.White() != b.White() {
			t.Fatalf("same seed diverged at sample %d", i)
		}
	}
	if NextSeed(42) == 42 {
		t.Errorf("reseed should move the state")
	}
}

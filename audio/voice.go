package audio

// Voice is the synthesis unit of a lane. Each lane owns exactly one voice and
// a hit retriggers it in place.
type Voice interface {
	Prepare(sampleRate float64)
	Trigger(velocity float64)
	// Process renders one sample. An inactive voice returns 0 and leaves its
	// filter memory untouched.
	Process() float64
	Active() bool
}

package audio

import "math"

const (
	MinBpm = 40.
	MaxBpm = 240.
)

// Transport is a frame counting step clock for 16th notes in 4/4.
type Transport struct {
	bpm        float64
	playing    bool
	sampleRate float64

	currentFrame  uint64
	stepIndex     int     // the next step to fire
	nextStepFrame float64 // frame at which stepIndex fires
}

func NewTransport(sampleRate float64) *Transport {
	t := &Transport{bpm: 120, playing: true}
	t.prepare(sampleRate)
	return t
}

func (t *Transport) prepare(sampleRate float64) {
	t.sampleRate = sampleRate
	t.Reset()
}

// Reset rewinds the clock to step 0. Tempo and play state are kept.
func (t *Transport) Reset() {
	t.currentFrame = 0
	t.stepIndex = 0
	t.nextStepFrame = 0
}

func (t *Transport) SetBpm(bpm float64) {
	if math.IsNaN(bpm) {
		return
	}
	t.bpm = math.Max(MinBpm, math.Min(MaxBpm, bpm))
}

func (t *Transport) Bpm() float64 { return t.bpm }

func (t *Transport) SetPlaying(on bool) { t.playing = on }

func (t *Transport) Playing() bool { return t.playing }

func (t *Transport) StepIndex() int { return t.stepIndex }

func (t *Transport) FramesPerStep() float64 {
	return t.sampleRate * 60 / t.bpm / 4
}

// Tick advances the clock by one frame. It returns the step that fires on
// this frame, if any. The step length is taken from the current tempo at
// every step boundary.
func (t *Transport) Tick() (step int, fire bool) {
	if float64(t.currentFrame) >= t.nextStepFrame {
		step, fire = t.stepIndex, true
		t.stepIndex = (t.stepIndex + 1) % Steps
		t.nextStepFrame += t.FramesPerStep()
	}
	t.currentFrame++
	return step, fire
}

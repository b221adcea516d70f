package audio

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/mrdg/drumbox/dsp"
)

const testSampleRate = 48000

func newTestEngine(t testing.TB) *Engine {
	t.Helper()
	e := NewEngine()
	if err := e.Prepare(testSampleRate, 512); err != nil {
		t.Fatal(err)
	}
	return e
}

func render(e *Engine, frames, channels int) []float32 {
	out := make([]float32, frames*channels)
	for n := 0; n < frames; n += 512 {
		m := min(512, frames-n)
		e.Process(out[n*channels:(n+m)*channels], m, channels)
	}
	return out
}

func fourOnTheFloor(e *Engine) {
	for step := 0; step < Steps; step++ {
		if step%4 == 0 {
			e.SetStep(LaneKick, step, true, 1)
		}
		if step%8 == 4 {
			e.SetStep(LaneSnare, step, true, 0.9)
		}
		e.SetStep(LaneHat, step, step%2 == 0, 0.6)
	}
}

func TestDeterminism(t *testing.T) {
	a, b := newTestEngine(t), newTestEngine(t)
	fourOnTheFloor(a)
	fourOnTheFloor(b)

	outA := render(a, testSampleRate, 2)
	outB := render(b, testSampleRate, 2)
	if !reflect.DeepEqual(outA, outB) {
		t.Errorf("two renders of the same pattern differ")
	}

	var energy float64
	for _, s := range outA {
		energy += float64(s * s)
	}
	if energy == 0 {
		t.Errorf("expected a non-silent render")
	}
}

func TestSilenceWhenStopped(t *testing.T) {
	e := newTestEngine(t)
	e.SetPlaying(false)
	for i, s := range render(e, 4096, 2) {
		if s != 0 {
			t.Fatalf("sample %d: want 0, got %v", i, s)
		}
	}
}

func TestVoicesRingOutAfterStop(t *testing.T) {
	e := newTestEngine(t)
	e.SetStep(LaneKick, 0, true, 1)
	render(e, 1024, 2)

	e.SetPlaying(false)
	tail := render(e, 512, 2)
	var nonZero bool
	for _, s := range tail {
		if s != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Errorf("expected the kick to keep sounding after stop")
	}

	// Long enough for every envelope to fall below the threshold.
	render(e, 2*testSampleRate, 2)
	if e.voicesActive() {
		t.Fatalf("voices still active after two seconds")
	}
	for i, s := range render(e, 4096, 2) {
		if s != 0 {
			t.Fatalf("sample %d: want 0, got %v", i, s)
		}
	}
	if want, got := false, e.IsPlaying(); want != got {
		t.Errorf("want playing %v, got %v", want, got)
	}
}

func TestTriggerWhileStopped(t *testing.T) {
	e := newTestEngine(t)
	e.SetPlaying(false)
	e.Trigger(LaneKick, 1)

	var peak float64
	for _, s := range render(e, 2048, 1) {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak == 0 {
		t.Errorf("expected a one-shot hit while stopped")
	}
	if want, got := 0, e.StepIndex(); want != got {
		t.Errorf("transport moved while stopped: want step %v, got %v", want, got)
	}
}

func TestStepTiming(t *testing.T) {
	tr := NewTransport(testSampleRate)
	tr.SetBpm(120)
	if want, got := 6000., tr.FramesPerStep(); want != got {
		t.Fatalf("want %v frames per step, got %v", want, got)
	}

	var frames []int
	var steps []int
	for frame := 0; frame < 96000; frame++ {
		if step, ok := tr.Tick(); ok {
			frames = append(frames, frame)
			steps = append(steps, step)
		}
	}
	var wantFrames, wantSteps []int
	for s := 0; s < Steps; s++ {
		wantFrames = append(wantFrames, s*6000)
		wantSteps = append(wantSteps, s)
	}
	if !reflect.DeepEqual(wantFrames, frames) {
		t.Errorf("wrong step frames:\nwant: %v\ngot:  %v", wantFrames, frames)
	}
	if !reflect.DeepEqual(wantSteps, steps) {
		t.Errorf("wrong steps:\nwant: %v\ngot:  %v", wantSteps, steps)
	}
	if want, got := 0, tr.StepIndex(); want != got {
		t.Errorf("want step index %v, got %v", want, got)
	}
}

func TestEngineStepTiming(t *testing.T) {
	e := newTestEngine(t)
	for step := 0; step < Steps; step++ {
		e.SetStep(LaneKick, step, true, 1)
	}
	render(e, 6000, 2)
	if want, got := 1, e.StepIndex(); want != got {
		t.Errorf("want step index %v, got %v", want, got)
	}
	render(e, 90000, 2)
	if want, got := 0, e.StepIndex(); want != got {
		t.Errorf("want step index %v after 96000 frames, got %v", want, got)
	}
}

func TestTempoChangeAtStepBoundary(t *testing.T) {
	tr := NewTransport(testSampleRate)
	var frames []int
	for frame := 0; len(frames) < 3; frame++ {
		if _, ok := tr.Tick(); ok {
			frames = append(frames, frame)
			if len(frames) == 1 {
				tr.SetBpm(60)
			}
		}
	}
	// The first step was scheduled at 120 BPM, the rest at 60.
	if want := []int{0, 6000, 18000}; !reflect.DeepEqual(want, frames) {
		t.Errorf("want step frames %v, got %v", want, frames)
	}
}

func TestBpmClamp(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{10, MinBpm},
		{90, 90},
		{1000, MaxBpm},
		{math.NaN(), MaxBpm},
	}
	e := newTestEngine(t)
	for _, test := range tests {
		t.Log(test.input)
		e.SetBpm(test.input)
		render(e, 16, 2)
		if want, got := test.want, e.Bpm(); want != got {
			t.Errorf("want bpm %v, got %v", want, got)
		}
	}
}

func TestExtremeParamsStayBounded(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Store(KickFeedback, 0.5)
	p.Store(KickDrive, 40)
	p.Store(KickOversample, 1)
	p.Store(KickCrunch, 1)
	p.Store(KickClick, 4)
	p.Store(KickPostGain, 4)
	p.Store(KickChain2ClipMode, float64(2))
	p.Store(KickLayer1On, 1)
	p.Store(KickLayer1Vol, 4)
	p.Store(KickLayer1Drive, 1)
	p.Store(KickLFOAmount, 1)
	p.Store(KickLFOTarget, 2)
	p.Store(KickLFORate, 200)
	p.Store(MasterGain, 2)
	p.Store(MasterClip, 0)
	e.SetMasterEQ(24, 24, 24)
	e.SetReverb(1, 1, 1)
	e.SetStereoWidth(1)
	p.Store(FxOTT, 1)
	p.Store(FxInflator, 1)
	p.Store(FxShift, 2000)
	p.Store(FxEnvVol, 1)
	for step := 0; step < Steps; step++ {
		e.SetStep(LaneKick, step, true, 1)
		e.SetStep(LaneSnare, step, true, 1)
		e.SetStep(LaneHat, step, true, 1)
	}

	out := render(e, 10*testSampleRate, 2)
	for i, s := range out {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < -2 || v > 2 {
			t.Fatalf("sample %d out of bounds: %v", i, v)
		}
	}

	// A NaN latched in a filter would be clamped to silence, so the last
	// second must still carry signal.
	var sum float64
	last := out[len(out)-2*testSampleRate:]
	for _, s := range last {
		sum += float64(s) * float64(s)
	}
	if rms := math.Sqrt(sum / float64(len(last))); rms < 0.01 {
		t.Errorf("output collapsed: rms %v over the last second", rms)
	}
	if v := e.kick.prevDirty; math.IsNaN(v) || math.IsInf(v, 0) {
		t.Errorf("kick feedback state is %v", v)
	}
	if !e.master.Finite() {
		t.Errorf("master filter state is not finite")
	}
}

func TestCommandOrdering(t *testing.T) {
	e := newTestEngine(t)
	if !e.ToggleStep(LaneKick, 4, true) || !e.SetBpm(90) {
		t.Fatal("commands should fit in an empty queue")
	}
	render(e, 512, 2)
	if want, got := (Step{On: true, Velocity: 1}), e.pattern.Get(LaneKick, 4); want != got {
		t.Errorf("want step %+v, got %+v", want, got)
	}
	if want, got := 90., e.Bpm(); want != got {
		t.Errorf("want bpm %v, got %v", want, got)
	}

	e.SetStep(LaneSnare, 2, true, 0.5)
	e.ToggleStep(LaneSnare, 2, false)
	e.SetBpm(100)
	e.SetBpm(130)
	render(e, 512, 2)
	if want, got := (Step{On: false, Velocity: 1}), e.pattern.Get(LaneSnare, 2); want != got {
		t.Errorf("want step %+v, got %+v", want, got)
	}
	if want, got := 130., e.Bpm(); want != got {
		t.Errorf("want bpm %v, got %v", want, got)
	}
}

func TestQueueFull(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < queueSize; i++ {
		if !e.SetBpm(100) {
			t.Fatalf("command %d should fit", i)
		}
	}
	if e.SetBpm(100) {
		t.Errorf("push into a full queue should fail")
	}
	if err := e.Send(SetBpm(100)); !errors.Is(err, ErrQueueFull) {
		t.Errorf("want ErrQueueFull, got %v", err)
	}
	render(e, 16, 2)
	if err := e.Send(SetBpm(100)); err != nil {
		t.Errorf("unexpected error after drain: %v", err)
	}
}

func TestPatternRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	e.SetStep(LaneKick, 3, true, 0.8)
	render(e, 3*6000+1, 2)

	if want, got := 0.8, e.pattern.Get(LaneKick, 3).Velocity; want != got {
		t.Errorf("want velocity %v, got %v", want, got)
	}
	if want, got := 0.8, e.kick.velocity; want != got {
		t.Errorf("want kick triggered with velocity %v, got %v", want, got)
	}
	if want, got := uint16(1<<3), e.StepMask(LaneKick); want != got {
		t.Errorf("want mask %016b, got %016b", want, got)
	}

	for lane := 0; lane < Lanes; lane++ {
		for step := 0; step < Steps; step++ {
			e.SetStep(lane, step, true, 0.5)
		}
	}
	e.ClearPattern()
	render(e, 16, 2)
	for lane := 0; lane < Lanes; lane++ {
		for step := 0; step < Steps; step++ {
			if want, got := (Step{}), e.pattern.Get(lane, step); want != got {
				t.Errorf("lane %d step %d: want %+v, got %+v", lane, step, want, got)
			}
		}
		if want, got := uint16(0), e.StepMask(lane); want != got {
			t.Errorf("lane %d: want empty mask, got %016b", lane, got)
		}
	}
}

func TestInvalidStepsIgnored(t *testing.T) {
	e := newTestEngine(t)
	e.SetStep(-1, 0, true, 1)
	e.SetStep(Lanes, 0, true, 1)
	e.SetStep(0, Steps, true, 1)
	e.ToggleStep(0, -3, true)
	e.Trigger(7, 1)
	e.SetStep(LaneHat, 1, true, 3)
	render(e, 512, 2)

	for lane := 0; lane < Lanes; lane++ {
		want := uint16(0)
		if lane == LaneHat {
			want = 1 << 1
		}
		if got := e.StepMask(lane); want != got {
			t.Errorf("lane %d: want mask %016b, got %016b", lane, want, got)
		}
	}
	if want, got := 1., e.pattern.Get(LaneHat, 1).Velocity; want != got {
		t.Errorf("want clamped velocity %v, got %v", want, got)
	}
	if want, got := (Step{}), e.pattern.Get(9, 9); want != got {
		t.Errorf("want zero step, got %+v", got)
	}
}

func TestChannelFanOut(t *testing.T) {
	const frames = 4000
	engines := make([]*Engine, 3)
	for i := range engines {
		engines[i] = newTestEngine(t)
		fourOnTheFloor(engines[i])
	}
	mono := render(engines[0], frames, 1)
	stereo := render(engines[1], frames, 2)
	quad := render(engines[2], frames, 4)

	for f := 0; f < frames; f++ {
		l, r := stereo[2*f], stereo[2*f+1]
		if l != quad[4*f] || r != quad[4*f+1] {
			t.Fatalf("frame %d: front channels differ from stereo render", f)
		}
		if quad[4*f+2] != mono[f] || quad[4*f+3] != mono[f] {
			t.Fatalf("frame %d: extra channels should carry the downmix", f)
		}
		if math.Abs(float64(mono[f])-0.5*(float64(l)+float64(r))) > 1e-6 {
			t.Fatalf("frame %d: want downmix %v, got %v", f, 0.5*(l+r), mono[f])
		}
	}
}

func TestProcessLengths(t *testing.T) {
	e := NewEngine()
	out := []float32{1, 1, 1, 1}
	e.Process(out, 2, 2)
	if want := []float32{0, 0, 0, 0}; !reflect.DeepEqual(want, out) {
		t.Errorf("unprepared engine should write silence, got %v", out)
	}

	e = newTestEngine(t)
	out = []float32{1, 1, 1, 1, 1}
	e.Process(out, 100, 2)
	if want := []float32{0, 0, 0, 0, 1}; !reflect.DeepEqual(want, out) {
		t.Errorf("want frames limited to the buffer, got %v", out)
	}
	e.Process(out, 2, 0)
}

func TestPrepareInvalidSampleRate(t *testing.T) {
	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		t.Log(sr)
		if err := NewEngine().Prepare(sr, 512); err == nil {
			t.Errorf("expected an error")
		}
	}
}

func TestResetRewindsTransport(t *testing.T) {
	e := newTestEngine(t)
	render(e, 20000, 2)
	if e.StepIndex() == 0 {
		t.Fatalf("transport did not advance")
	}
	e.Reset()
	render(e, 1, 2)
	if want, got := 1, e.StepIndex(); want != got {
		t.Errorf("want step index %v after reset, got %v", want, got)
	}
}

func TestChainClip(t *testing.T) {
	tests := []struct {
		input   float64
		inherit dsp.ClipMode
		want    dsp.ClipMode
	}{
		{-1, dsp.ClipFold, dsp.ClipFold},
		{-0.6, dsp.ClipHard, dsp.ClipHard},
		{-0.4, dsp.ClipFold, dsp.ClipTanh},
		{1, dsp.ClipFold, dsp.ClipHard},
		{2, dsp.ClipTanh, dsp.ClipFold},
	}
	for _, test := range tests {
		t.Log(test.input)
		if want, got := test.want, chainClip(test.input, test.inherit); want != got {
			t.Errorf("want %v, got %v", want, got)
		}
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t)
	fourOnTheFloor(e)
	e.Params().Store(KickOversample, 1)
	out := make([]float32, 512*2)
	allocs := testing.AllocsPerRun(50, func() {
		e.SetBpm(128)
		e.Process(out, 512, 2)
	})
	if allocs != 0 {
		t.Errorf("want 0 allocations per buffer, got %v", allocs)
	}
}

package audio

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/mrdg/drumbox/dsp"
)

var (
	ErrNotPrepared = errors.New("engine not prepared")
	ErrQueueFull   = errors.New("command queue is full")
)

// Engine renders the drum machine. Process is called from the audio
// goroutine; every other method may be called from a single control
// goroutine. Commands reach the audio goroutine through a lock-free queue and
// parameters through the atomic Params table.
type Engine struct {
	params *Params
	queue  *commandQueue
	snap   [numParams]float64

	sampleRate float64
	maxBlock   int
	prepared   atomic.Bool

	pattern   Pattern
	transport *Transport
	kick      *Kick
	snare     *Snare
	hat       *Hat
	voices    [Lanes]Voice
	reverb    *dsp.Reverb
	fx        *dsp.FxSection
	master    *dsp.Master
	kp        kickParams
	applyFn   func(Command)

	// published by the audio goroutine
	stepIndex atomic.Int32
	bpm       atomic.Uint64
	playing   atomic.Bool
	masks     [Lanes]atomic.Uint32
}

func NewEngine() *Engine {
	e := &Engine{
		params:    NewParams(),
		queue:     newCommandQueue(queueSize),
		transport: NewTransport(48000),
		kick:      NewKick(),
		snare:     NewSnare(),
		hat:       NewHat(),
		reverb:    dsp.NewReverb(),
		fx:        dsp.NewFxSection(),
		master:    dsp.NewMaster(),
	}
	e.voices = [Lanes]Voice{e.kick, e.snare, e.hat}
	e.applyFn = e.apply
	e.publish()
	return e
}

// Prepare sizes every block for the sample rate and clears the pattern. It
// must not be called while Process is running.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("prepare: invalid sample rate: %v", sampleRate)
	}
	e.sampleRate = sampleRate
	e.maxBlock = maxBlockSize
	e.transport.prepare(sampleRate)
	for _, v := range e.voices {
		v.Prepare(sampleRate)
	}
	e.reverb.Prepare(sampleRate)
	e.fx.Prepare(sampleRate)
	e.master.Prepare(sampleRate)
	e.pattern.Clear()
	e.publish()
	e.prepared.Store(true)
	return nil
}

func (e *Engine) Prepared() bool { return e.prepared.Load() }

func (e *Engine) SampleRate() float64 { return e.sampleRate }

func (e *Engine) MaxBlockSize() int { return e.maxBlock }

func (e *Engine) Params() *Params { return e.params }

func (e *Engine) push(cmd Command) bool { return e.queue.push(cmd) }

func (e *Engine) SetBpm(bpm float64) bool { return e.push(SetBpm(bpm)) }

func (e *Engine) SetPlaying(on bool) bool { return e.push(SetPlaying(on)) }

func (e *Engine) SetStep(lane, step int, on bool, velocity float64) bool {
	return e.push(SetStep(lane, step, on, velocity))
}

func (e *Engine) ToggleStep(lane, step int, on bool) bool {
	return e.push(ToggleStep(lane, step, on))
}

func (e *Engine) ClearPattern() bool { return e.push(ClearPattern()) }

// Reset rewinds the transport and clears the reverb, fx and master memory.
func (e *Engine) Reset() bool { return e.push(ResetTransport()) }

// Trigger plays a single hit on a lane, whether or not the transport runs.
func (e *Engine) Trigger(lane int, velocity float64) bool {
	return e.push(TriggerLane(lane, velocity))
}

// Send pushes a command and returns ErrQueueFull if it did not fit.
func (e *Engine) Send(cmd Command) error {
	if !e.push(cmd) {
		return ErrQueueFull
	}
	return nil
}

func (e *Engine) SetMasterEQ(lowDb, midDb, highDb float64) {
	e.params.Store(MasterEQLow, lowDb)
	e.params.Store(MasterEQMid, midDb)
	e.params.Store(MasterEQHigh, highDb)
}

func (e *Engine) SetReverb(amount, size, tone float64) {
	e.params.Store(ReverbAmount, amount)
	e.params.Store(ReverbSize, size)
	e.params.Store(ReverbTone, tone)
}

func (e *Engine) SetStereoWidth(width float64) {
	e.params.Store(FxStereo, width)
}

// StepIndex returns the step that fires next.
func (e *Engine) StepIndex() int { return int(e.stepIndex.Load()) }

func (e *Engine) Bpm() float64 { return math.Float64frombits(e.bpm.Load()) }

func (e *Engine) IsPlaying() bool { return e.playing.Load() }

// StepMask returns a bit per step of the lane that is on, as of the last
// processed buffer.
func (e *Engine) StepMask(lane int) uint16 {
	if lane < 0 || lane >= Lanes {
		return 0
	}
	return uint16(e.masks[lane].Load())
}

func (e *Engine) publish() {
	e.stepIndex.Store(int32(e.transport.StepIndex()))
	e.bpm.Store(math.Float64bits(e.transport.Bpm()))
	e.playing.Store(e.transport.Playing())
	for lane := range e.masks {
		e.masks[lane].Store(uint32(e.pattern.mask(lane)))
	}
}

func (e *Engine) apply(cmd Command) {
	switch cmd.kind {
	case cmdToggleStep, cmdSetStep:
		e.pattern.Set(cmd.lane, cmd.step, cmd.on, cmd.velocity)
	case cmdSetBpm:
		e.transport.SetBpm(cmd.bpm)
	case cmdSetPlaying:
		e.transport.SetPlaying(cmd.on)
	case cmdClearPattern:
		e.pattern.Clear()
	case cmdReset:
		e.transport.Reset()
		e.reverb.Reset()
		e.fx.Reset()
		e.master.Reset()
	case cmdTrigger:
		if cmd.lane >= 0 && cmd.lane < Lanes {
			e.trigger(cmd.lane, math.Max(0, math.Min(1, cmd.velocity)))
		}
	}
}

func (e *Engine) trigger(lane int, velocity float64) {
	e.voices[lane].Trigger(velocity)
	if lane == LaneKick {
		e.fx.TriggerEnv(velocity)
	}
}

func (e *Engine) triggerStep(step int) {
	for lane := range e.voices {
		if s := e.pattern.Get(lane, step); s.On {
			e.trigger(lane, s.Velocity)
		}
	}
}

func (e *Engine) voicesActive() bool {
	for _, v := range e.voices {
		if v.Active() {
			return true
		}
	}
	return false
}

func clipMode(v float64) dsp.ClipMode {
	return dsp.ClipMode(dsp.Clamp(math.Round(v), 0, 2))
}

// chainClip resolves a chain clip mode. Values below -0.5 inherit the kick's
// clip mode.
func chainClip(v float64, inherit dsp.ClipMode) dsp.ClipMode {
	if v < -0.5 {
		return inherit
	}
	return clipMode(v)
}

// update applies the parameter snapshot to every block.
func (e *Engine) update() {
	s := &e.snap

	e.master.SetEQ(s[MasterEQLow], s[MasterEQMid], s[MasterEQHigh])
	e.master.SetClip(s[MasterClip] > 0.5, int(math.Round(s[MasterClipMode])))

	kp := &e.kp
	kp.decay = s[KickDecay]
	kp.attackHz = s[KickAttackFreq]
	kp.baseHz = s[KickBaseFreq]
	kp.pitchDecay = s[KickPitchDecay]
	kp.drive = s[KickDrive]
	kp.driveDecay = s[KickDriveDecay]
	kp.click = s[KickClick]
	kp.preHPHz = s[KickPreHP]
	kp.postGain = s[KickPostGain]
	kp.postHPHz = s[KickPostHP]
	kp.postLPHz = s[KickPostLP]
	kp.oversample = s[KickOversample] > 0.5
	kp.clip = clipMode(s[KickClipMode])

	const chainStride = KickChain2ClipMode - KickChain1ClipMode
	for i := range kp.chains {
		base := KickChain1ClipMode + Param(i)*chainStride
		kp.chains[i] = chainParams{
			mode:  chainClip(s[base], kp.clip),
			mix:   s[base+1],
			drive: s[base+2],
			lpHz:  s[base+3],
			asym:  s[base+4],
		}
	}

	kp.tok = s[KickTok]
	kp.tokHPHz = s[KickTokHP]
	kp.crunch = s[KickCrunch]
	kp.tailDecay = s[KickTailDecay]
	kp.tailMix = s[KickTailMix]
	kp.tailFreqMul = s[KickTailFreqMul]
	kp.subMix = s[KickSubMix]
	kp.subLPHz = s[KickSubLP]
	kp.feedback = s[KickFeedback]

	const layerStride = KickLayer2On - KickLayer1On
	for i := range kp.layers {
		base := KickLayer1On + Param(i)*layerStride
		kp.layers[i] = layerParams{
			on:      s[base] > 0.5,
			osc:     oscType(dsp.Clamp(math.Round(s[base+1]), 0, 3)),
			freqHz:  s[base+2],
			phase01: s[base+3],
			drive:   s[base+4],
			attack:  s[base+5],
			decay:   s[base+6],
			vol:     s[base+7],
		}
	}

	kp.lfo = lfoParams{
		amount: s[KickLFOAmount],
		rateHz: s[KickLFORate],
		shape:  dsp.Shape(dsp.Clamp(math.Round(s[KickLFOShape]), 0, 2)),
		target: lfoTarget(dsp.Clamp(math.Round(s[KickLFOTarget]), 0, 3)),
		pulse:  s[KickLFOPulse],
	}
	e.kick.set(kp)

	e.reverb.SetParams(s[ReverbAmount], s[ReverbSize], s[ReverbTone])
	e.fx.Set(dsp.FxParams{
		ShiftHz:     s[FxShift],
		Stereo:      s[FxStereo],
		Diffusion:   s[FxDiffusion],
		CleanDirty:  s[FxCleanDirty],
		Tone:        s[FxTone],
		EnvAttack:   s[FxEnvAttack],
		EnvDecay:    s[FxEnvDecay],
		EnvVol:      s[FxEnvVol],
		Disperse:    s[FxDisperse],
		Inflator:    s[FxInflator],
		InflatorMix: s[FxInflatorMix],
		OTT:         s[FxOTT],
	})

	e.snare.set(s[SnareDecay], s[SnareTone], s[SnareNoiseMix])
	e.hat.set(s[HatDecay], s[HatCutoff])
}

// Process renders frames of interleaved audio into out. It drains the
// command queue, snapshots the parameters and then renders sample by sample.
// With one channel the stereo bus is averaged; channels past the second get
// the same average. While stopped, voices that are still sounding ring out
// and the output is silent once none is left.
func (e *Engine) Process(out []float32, frames, channels int) {
	if channels <= 0 {
		return
	}
	if n := len(out) / channels; frames > n {
		frames = n
	}
	if frames <= 0 {
		return
	}
	buf := out[:frames*channels]
	clear(buf)
	if !e.prepared.Load() {
		return
	}

	e.queue.drain(e.applyFn)
	e.params.snapshot(&e.snap)
	e.update()
	gain := e.snap[MasterGain]

	for f := 0; f < frames; f++ {
		if e.transport.playing {
			if step, ok := e.transport.Tick(); ok {
				e.triggerStep(step)
			}
		} else if !e.voicesActive() {
			break
		}

		k := e.kick.Process()
		dry := k + e.snare.Process() + e.hat.Process()
		wetL, wetR := e.reverb.Process(k)
		l, r := e.fx.Process(dry+wetL, dry+wetR)
		l, r = e.master.Process(l, r, gain)

		frame := buf[f*channels : (f+1)*channels]
		if channels == 1 {
			frame[0] = float32(0.5 * (l + r))
			continue
		}
		frame[0] = float32(l)
		frame[1] = float32(r)
		for c := 2; c < channels; c++ {
			frame[c] = float32(0.5 * (l + r))
		}
	}
	e.publish()
}

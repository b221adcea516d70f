package audio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
)

var ErrUnknownParam = errors.New("unknown parameter")

// Param identifies one entry of the parameter table.
type Param int

const (
	MasterGain Param = iota
	MasterEQLow
	MasterEQMid
	MasterEQHigh
	MasterClip
	MasterClipMode

	KickDecay
	KickAttackFreq
	KickBaseFreq
	KickPitchDecay
	KickDrive
	KickDriveDecay
	KickClick
	KickPreHP
	KickPostGain
	KickPostHP
	KickPostLP
	KickOversample
	KickClipMode

	KickChain1ClipMode
	KickChain1Mix
	KickChain1Drive
	KickChain1LP
	KickChain1Asym
	KickChain2ClipMode
	KickChain2Mix
	KickChain2Drive
	KickChain2LP
	KickChain2Asym

	KickTok
	KickTokHP
	KickCrunch
	KickTailDecay
	KickTailMix
	KickTailFreqMul
	KickSubMix
	KickSubLP
	KickFeedback

	KickLayer1On
	KickLayer1Type
	KickLayer1Freq
	KickLayer1Phase
	KickLayer1Drive
	KickLayer1Attack
	KickLayer1Decay
	KickLayer1Vol
	KickLayer2On
	KickLayer2Type
	KickLayer2Freq
	KickLayer2Phase
	KickLayer2Drive
	KickLayer2Attack
	KickLayer2Decay
	KickLayer2Vol

	KickLFOAmount
	KickLFORate
	KickLFOShape
	KickLFOTarget
	KickLFOPulse

	ReverbAmount
	ReverbSize
	ReverbTone

	FxShift
	FxStereo
	FxDiffusion
	FxCleanDirty
	FxTone
	FxEnvAttack
	FxEnvDecay
	FxEnvVol
	FxDisperse
	FxOTT
	FxInflator
	FxInflatorMix

	SnareDecay
	SnareTone
	SnareNoiseMix

	HatDecay
	HatCutoff

	numParams
)

type paramInfo struct {
	name     string
	min, max float64
	def      float64
}

const maxCoeff = 0.999999999

var paramTable = [numParams]paramInfo{
	MasterGain:     {"master.gain", 0, 2, 0.6},
	MasterEQLow:    {"master.eq.low", -24, 24, 0},
	MasterEQMid:    {"master.eq.mid", -24, 24, 0},
	MasterEQHigh:   {"master.eq.high", -24, 24, 0},
	MasterClip:     {"master.clip", 0, 1, 1},
	MasterClipMode: {"master.clipmode", 0, 1, 0},

	KickDecay:      {"kick.decay", 0, maxCoeff, 0.9995},
	KickAttackFreq: {"kick.attack", 20, 2000, 120},
	KickBaseFreq:   {"kick.pitch", 20, 500, 55},
	KickPitchDecay: {"kick.pitchdecay", 0, maxCoeff, 0.993},
	KickDrive:      {"kick.drive", 0, 50, 14},
	KickDriveDecay: {"kick.drivedecay", 0, maxCoeff, 0.99},
	KickClick:      {"kick.click", 0, 4, 0.7},
	KickPreHP:      {"kick.prehp", 10, 500, 30},
	KickPostGain:   {"kick.postgain", 0, 4, 0.85},
	KickPostHP:     {"kick.posthp", 10, 2000, 25},
	KickPostLP:     {"kick.postlp", 100, 20000, 8000},
	KickOversample: {"kick.oversample", 0, 1, 0},
	KickClipMode:   {"kick.clipmode", 0, 2, 0},

	KickChain1ClipMode: {"kick.chain1.clipmode", -1, 2, -1},
	KickChain1Mix:      {"kick.chain1.mix", 0, 1, 0.7},
	KickChain1Drive:    {"kick.chain1.drive", 0.5, 4, 1},
	KickChain1LP:       {"kick.chain1.lp", 100, 20000, 9000},
	KickChain1Asym:     {"kick.chain1.asym", -1, 1, 0},
	KickChain2ClipMode: {"kick.chain2.clipmode", -1, 2, -1},
	KickChain2Mix:      {"kick.chain2.mix", 0, 1, 0.3},
	KickChain2Drive:    {"kick.chain2.drive", 0.5, 4, 1.6},
	KickChain2LP:       {"kick.chain2.lp", 100, 20000, 5200},
	KickChain2Asym:     {"kick.chain2.asym", -1, 1, 0.2},

	KickTok:         {"kick.tok", 0, 1, 0.2},
	KickTokHP:       {"kick.tokhp", 20, 5000, 180},
	KickCrunch:      {"kick.crunch", 0, 1, 0.15},
	KickTailDecay:   {"kick.tail.decay", 0, maxCoeff, 0.9992},
	KickTailMix:     {"kick.tail.mix", 0, 1, 0.45},
	KickTailFreqMul: {"kick.tail.freqmul", 0.25, 8, 1},
	KickSubMix:      {"kick.sub.mix", 0, 1, 0.35},
	KickSubLP:       {"kick.sub.lp", 20, 1000, 180},
	KickFeedback:    {"kick.feedback", 0, 0.5, 0.08},

	KickLayer1On:     {"kick.layer1.on", 0, 1, 0},
	KickLayer1Type:   {"kick.layer1.type", 0, 3, 0},
	KickLayer1Freq:   {"kick.layer1.freq", 10, 5000, 110},
	KickLayer1Phase:  {"kick.layer1.phase", 0, 1, 0},
	KickLayer1Drive:  {"kick.layer1.drive", 0, 1, 0},
	KickLayer1Attack: {"kick.layer1.attack", 0, maxCoeff, 0.05},
	KickLayer1Decay:  {"kick.layer1.decay", 0, maxCoeff, 0.9992},
	KickLayer1Vol:    {"kick.layer1.vol", 0, 4, 0.001},
	KickLayer2On:     {"kick.layer2.on", 0, 1, 0},
	KickLayer2Type:   {"kick.layer2.type", 0, 3, 1},
	KickLayer2Freq:   {"kick.layer2.freq", 10, 5000, 220},
	KickLayer2Phase:  {"kick.layer2.phase", 0, 1, 0},
	KickLayer2Drive:  {"kick.layer2.drive", 0, 1, 0},
	KickLayer2Attack: {"kick.layer2.attack", 0, maxCoeff, 0.05},
	KickLayer2Decay:  {"kick.layer2.decay", 0, maxCoeff, 0.9992},
	KickLayer2Vol:    {"kick.layer2.vol", 0, 4, 0.001},

	KickLFOAmount: {"kick.lfo.amount", 0, 1, 0},
	KickLFORate:   {"kick.lfo.rate", 0, 200, 2},
	KickLFOShape:  {"kick.lfo.shape", 0, 2, 0},
	KickLFOTarget: {"kick.lfo.target", 0, 3, 0},
	KickLFOPulse:  {"kick.lfo.pulse", 0.01, 0.99, 0.5},

	ReverbAmount: {"reverb.amount", 0, 1, 0},
	ReverbSize:   {"reverb.size", 0, 1, 0.35},
	ReverbTone:   {"reverb.tone", 0, 1, 0.55},

	FxShift:       {"fx.shift", -2000, 2000, 0},
	FxStereo:      {"fx.stereo", 0, 1, 0},
	FxDiffusion:   {"fx.diffusion", 0, 1, 0},
	FxCleanDirty:  {"fx.cleandirty", 0, 1, 1},
	FxTone:        {"fx.tone", 0, 1, 0.5},
	FxEnvAttack:   {"fx.env.attack", 0, 0.999999, 0.05},
	FxEnvDecay:    {"fx.env.decay", 0, 0.999999, 0.995},
	FxEnvVol:      {"fx.env.vol", 0, 1, 0},
	FxDisperse:    {"fx.disperse", 0, 1, 0},
	FxOTT:         {"fx.ott", 0, 1, 0},
	FxInflator:    {"fx.inflator", 0, 1, 0},
	FxInflatorMix: {"fx.inflator.mix", 0, 1, 0.5},

	SnareDecay:    {"snare.decay", 0, maxCoeff, 0.9975},
	SnareTone:     {"snare.tone", 20, 2000, 180},
	SnareNoiseMix: {"snare.noisemix", 0, 1, 0.75},

	HatDecay:  {"hat.decay", 0, maxCoeff, 0.96},
	HatCutoff: {"hat.cutoff", 200, 20000, 7000},
}

var paramsByName = func() map[string]Param {
	m := make(map[string]Param, numParams)
	for id, info := range paramTable {
		m[info.name] = Param(id)
	}
	return m
}()

// LookupParam finds a parameter by its dotted name.
func LookupParam(name string) (Param, bool) {
	id, ok := paramsByName[name]
	return id, ok
}

// ParamNames returns all parameter names in sorted order.
func ParamNames() []string {
	names := make([]string, 0, numParams)
	for _, info := range paramTable {
		names = append(names, info.name)
	}
	sort.Strings(names)
	return names
}

func (id Param) valid() bool { return id >= 0 && id < numParams }

func (id Param) String() string {
	if !id.valid() {
		return fmt.Sprintf("Param(%d)", int(id))
	}
	return paramTable[id].name
}

// Range returns the bounds and the default of the parameter.
func (id Param) Range() (lo, hi, def float64) {
	if !id.valid() {
		return 0, 0, 0
	}
	info := paramTable[id]
	return info.min, info.max, info.def
}

// Curve tells how a parameter stored as a per-sample coefficient maps to a
// time in milliseconds.
type Curve int

const (
	NoCurve Curve = iota
	DecayCurve
	AttackCurve
)

var curves = map[Param]Curve{
	KickDecay:        DecayCurve,
	KickPitchDecay:   DecayCurve,
	KickDriveDecay:   DecayCurve,
	KickTailDecay:    DecayCurve,
	KickLayer1Attack: AttackCurve,
	KickLayer1Decay:  DecayCurve,
	KickLayer2Attack: AttackCurve,
	KickLayer2Decay:  DecayCurve,
	FxEnvAttack:      AttackCurve,
	FxEnvDecay:       DecayCurve,
	SnareDecay:       DecayCurve,
	HatDecay:         DecayCurve,
}

// Curve returns NoCurve for parameters that are not envelope coefficients.
func (id Param) Curve() Curve { return curves[id] }

// Params is the engine's parameter table. Every entry is a float64 stored in
// an atomic cell, written by the control goroutine and read once per buffer
// by the audio goroutine. Reads and writes never block.
type Params struct {
	cells [numParams]atomic.Uint64
}

func NewParams() *Params {
	var p Params
	p.Reset()
	return &p
}

// Reset restores every parameter to its default.
func (p *Params) Reset() {
	for id := range p.cells {
		p.cells[id].Store(math.Float64bits(paramTable[id].def))
	}
}

// Store clamps v into the parameter's range. NaN and unknown ids are ignored.
func (p *Params) Store(id Param, v float64) {
	if !id.valid() || math.IsNaN(v) {
		return
	}
	info := &paramTable[id]
	v = math.Max(info.min, math.Min(info.max, v))
	p.cells[id].Store(math.Float64bits(v))
}

func (p *Params) Load(id Param) float64 {
	if !id.valid() {
		return 0
	}
	return math.Float64frombits(p.cells[id].Load())
}

// Set updates the named parameter. Numbers and booleans are accepted.
func (p *Params) Set(key string, value interface{}) error {
	id, ok := LookupParam(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	default:
		return fmt.Errorf("set parameter %s: value is not a number: %v", key, value)
	}
	if math.IsNaN(f) {
		return fmt.Errorf("set parameter %s: value is not a number", key)
	}
	p.Store(id, f)
	return nil
}

func (p *Params) Get(key string) (interface{}, error) {
	id, ok := LookupParam(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}
	return p.Load(id), nil
}

// snapshot copies every cell into dst.
func (p *Params) snapshot(dst *[numParams]float64) {
	for id := range p.cells {
		dst[id] = math.Float64frombits(p.cells[id].Load())
	}
}

package dsp

// Threshold below which an envelope counts as silent.
const Threshold = 1e-4

// Decay is an exponential decay-only envelope.
type Decay struct {
	Value float64
	Coeff float64 // per-sample multiplier, close to 1 is long
}

func (e *Decay) Trigger(start float64) { e.Value = start }

// Process returns the current value and then decays it.
func (e *Decay) Process() float64 {
	out := e.Value
	e.Value *= e.Coeff
	return out
}

func (e *Decay) Active() bool { return e.Value > Threshold }

func (e *Decay) Reset() { e.Value = 0 }

type stage int

const (
	stageOff stage = iota
	stageAttack
	stageDecay
)

// AttackDecay approaches 1 with a one-pole attack and then decays exponentially
// towards 0. Both coefficients are in [0,1); 0 is instant.
type AttackDecay struct {
	Value  float64
	Attack float64
	Decay  float64
	stage  stage
}

func (e *AttackDecay) Trigger(start float64) {
	e.Value = start
	e.stage = stageAttack
}

func (e *AttackDecay) Process() float64 {
	switch e.stage {
	case stageAttack:
		e.Value = 1 - (1-e.Value)*e.Attack
		if 1-e.Value <= Threshold {
			e.Value = 1
			e.stage = stageDecay
		}
		return e.Value
	case stageDecay:
		out := e.Value
		e.Value *= e.Decay
		if e.Value <= Threshold {
			e.Value = 0
			e.stage = stageOff
		}
		return out
	default:
		return 0
	}
}

// Active reports whether the envelope is attacking or still above the
// threshold in decay.
func (e *AttackDecay) Active() bool {
	return e.stage != stageOff
}

func (e *AttackDecay) Reset() {
	e.Value = 0
	e.stage = stageOff
}

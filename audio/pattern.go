package audio

import "math"

const (
	Lanes = 3
	Steps = 16
)

const (
	LaneKick = iota
	LaneSnare
	LaneHat
)

var laneNames = [Lanes]string{"kick", "snare", "hat"}

// LaneName returns the name of a lane, or "" for an invalid index.
func LaneName(lane int) string {
	if lane < 0 || lane >= Lanes {
		return ""
	}
	return laneNames[lane]
}

// LookupLane finds a lane by name.
func LookupLane(name string) (int, bool) {
	for i, n := range laneNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

type Step struct {
	On       bool
	Velocity float64
}

// Pattern is a fixed grid of steps. Out of range accessors are no-ops.
type Pattern struct {
	steps [Lanes][Steps]Step
}

func validStep(lane, step int) bool {
	return lane >= 0 && lane < Lanes && step >= 0 && step < Steps
}

func (p *Pattern) Set(lane, step int, on bool, velocity float64) {
	if !validStep(lane, step) {
		return
	}
	if math.IsNaN(velocity) {
		velocity = 0
	}
	p.steps[lane][step] = Step{On: on, Velocity: math.Max(0, math.Min(1, velocity))}
}

func (p *Pattern) Get(lane, step int) Step {
	if !validStep(lane, step) {
		return Step{}
	}
	return p.steps[lane][step]
}

func (p *Pattern) Clear() {
	p.steps = [Lanes][Steps]Step{}
}

// mask returns a bit per step of the lane that is on.
func (p *Pattern) mask(lane int) uint16 {
	var m uint16
	for i, s := range p.steps[lane] {
		if s.On {
			m |= 1 << i
		}
	}
	return m
}

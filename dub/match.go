package dub

import "fmt"

// A match expression selects steps of one bar: four beats of sixteenth
// note steps.
const (
	BarBeats = 4
	BarSteps = 16
)

// finest division a bar of sixteenths can hold
const maxLevel = 2

// division selects notes at one level of a match expression. Level 0
// counts the beats of the bar, level 1 the eighths within a beat and
// level 2 the sixteenths within a beat. Note numbers start at 1.
type division struct {
	level int
	sel   selector
}

type selector interface {
	selects(n int) bool
}

// span selects an inclusive range of notes; -1 leaves an end open.
type span struct {
	from, to int
}

func (s span) selects(n int) bool {
	return (n >= s.from || s.from == -1) && (n <= s.to || s.to == -1)
}

var anyNote = span{-1, -1}

type picks []int

func (p picks) selects(n int) bool {
	for _, k := range p {
		if k == n {
			return true
		}
	}
	return false
}

// notes is the highest note number at this level.
func (d division) notes() int {
	if d.level == 0 {
		return BarBeats
	}
	return 1 << d.level
}

// stride is the number of steps per note at this level.
func (d division) stride() int {
	return BarSteps / (BarBeats << d.level)
}

// number returns the note that holds step at this level.
func (d division) number(step int) int {
	note := step / d.stride()
	if d.level == 0 {
		return note + 1
	}
	return note%(1<<d.level) + 1
}

func (d division) check() error {
	if d.level > maxLevel {
		return fmt.Errorf("can't match on %d notes in a bar of %d steps", BarBeats<<d.level, BarSteps)
	}
	inRange := func(n int) bool { return n >= 1 && n <= d.notes() }
	switch sel := d.sel.(type) {
	case picks:
		for _, n := range sel {
			if !inRange(n) {
				return fmt.Errorf("note %d is outside 1..%d", n, d.notes())
			}
		}
	case span:
		if sel == anyNote {
			return nil
		}
		if !inRange(sel.from) || !inRange(sel.to) || sel.from > sel.to {
			return fmt.Errorf("range %d:%d is outside 1..%d", sel.from, sel.to, d.notes())
		}
	}
	return nil
}

// Mask returns one bit per selected step, the first step of the bar in
// bit 0. Only steps on the grid of the finest division are selected, and
// each coarser division must select the note that holds them.
func (m MatchExpr) Mask() (uint16, error) {
	if len(m.divisions) == 0 {
		return 0, nil
	}
	for _, d := range m.divisions {
		if err := d.check(); err != nil {
			return 0, err
		}
	}
	finest := m.divisions[len(m.divisions)-1]

	var mask uint16
next:
	for step := 0; step < BarSteps; step += finest.stride() {
		for _, d := range m.divisions {
			if !d.sel.selects(d.number(step)) {
				continue next
			}
		}
		mask |= 1 << step
	}
	return mask, nil
}

// Steps returns the selected steps in ascending order, counting from 0.
func (m MatchExpr) Steps() ([]int, error) {
	mask, err := m.Mask()
	if err != nil {
		return nil, err
	}
	var steps []int
	for step := 0; step < BarSteps; step++ {
		if mask&(1<<step) != 0 {
			steps = append(steps, step)
		}
	}
	return steps, nil
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrdg/drumbox/audio"
)

type grid struct {
	steps    [audio.Lanes][audio.Steps]audio.Step
	playhead int // -1 when stopped
	bpm      float64
	playing  bool
}

func snapshotGrid(env *env) grid {
	g := grid{playhead: -1, bpm: env.bpm, playing: env.engine.IsPlaying()}
	for lane := 0; lane < audio.Lanes; lane++ {
		for step := 0; step < audio.Steps; step++ {
			g.steps[lane][step] = env.pattern.Get(lane, step)
		}
	}
	if g.playing {
		// StepIndex is the step that fires next.
		g.playhead = (env.engine.StepIndex() + audio.Steps - 1) % audio.Steps
	}
	return g
}

const (
	spacePerStep = 4
	stepsPerBeat = 4
	nameWidth    = 6
)

func renderGrid(w io.Writer, g grid, color bool) {
	paint := func(text string, c int) string {
		if !color {
			return text
		}
		return colorize(text, c)
	}

	var icons []string
	for i := 1; i <= audio.Steps/stepsPerBeat; i++ {
		icons = append(icons, numIcon(i))
	}
	spacing := stepsPerBeat*spacePerStep - 1
	beats := strings.Join(icons, strings.Repeat(" ", spacing))
	state := "■"
	if g.playing {
		state = "▶"
	}
	fmt.Fprintf(w, "%s %s  %s  %v bpm\n", strings.Repeat(" ", nameWidth), state, beats, g.bpm)

	for lane := 0; lane < audio.Lanes; lane++ {
		var steps string
		for n, s := range g.steps[lane] {
			step := "⬜️"
			if s.On {
				step = "⬛️"
			}
			if n == g.playhead {
				step = paint(step, colorYellow)
			}
			steps += step + "  "
		}
		name := audio.LaneName(lane)
		name += strings.Repeat(" ", nameWidth-len(name))
		fmt.Fprintf(w, "%s   %s\n", paint(name, colorBlue), strings.TrimRight(steps, " "))
	}

	var numbers string
	for step := 1; step <= audio.Steps; step++ {
		space := spacePerStep - 2
		if step < 10 {
			space++
		}
		numbers += strconv.Itoa(step) + strings.Repeat(" ", space)
	}
	numbers = paint(strings.TrimRight(numbers, " "), colorMagenta)
	fmt.Fprintf(w, "%s   %s\n", strings.Repeat(" ", nameWidth), numbers)
}

func numIcon(n int) string {
	// https://www.unicode.org/emoji/charts/full-emoji-list.html#0030_fe0f_20e3
	return string([]byte{48 + byte(n%10), 239, 184, 143, 226, 131, 163})
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}

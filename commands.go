package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/mrdg/drumbox/audio"
	"github.com/mrdg/drumbox/bounce"
	"github.com/mrdg/drumbox/dsp"
	"github.com/mrdg/drumbox/dub"
)

type completion int

const (
	completeNone completion = iota
	completeParam
	completeLane
	completePreset
)

type command struct {
	name     string
	run      func(*env, []dub.Node) (string, error)
	minArgs  int
	maxArgs  int // -1 means no limit
	complete completion
	help     string
}

func (c command) arity() string {
	switch {
	case c.minArgs == c.maxArgs:
		return fmt.Sprintf("want %d", c.minArgs)
	case c.maxArgs < 0:
		return fmt.Sprintf("need at least %d", c.minArgs)
	default:
		return fmt.Sprintf("want %d to %d", c.minArgs, c.maxArgs)
	}
}

var commands []command

func init() {
	commands = []command{
		{"play", playCommand, 0, 0, completeNone, "start the transport"},
		{"stop", stopCommand, 0, 0, completeNone, "stop the transport, sounding voices ring out"},
		{"bpm", bpmCommand, 1, 1, completeNone, "bpm <40..240>"},
		{"step", stepCommand, 2, 3, completeLane, "step <lane> [velocity] '<match>: turn matching steps on"},
		{"toggle", toggleCommand, 2, -1, completeLane, "toggle <lane> <step>...: flip steps, counting from 1"},
		{"vel", velCommand, 3, 3, completeLane, "vel <lane> <step> <velocity>"},
		{"clear", clearCommand, 0, 1, completeLane, "clear [lane]"},
		{"hit", hitCommand, 1, 2, completeLane, "hit <lane> [velocity]: play one hit"},
		{"set", setCommand, 2, 2, completeParam, "set <param> <value>"},
		{"get", getCommand, 1, 1, completeParam, "get <param>"},
		{"ms", msCommand, 2, 2, completeParam, "ms <param> <milliseconds>: set an envelope coefficient from a time"},
		{"db", dbCommand, 2, 2, completeParam, "db <param> <decibels>: set a linear gain from decibels"},
		{"params", paramsCommand, 0, 1, completeNone, "params [prefix]"},
		{"preset", presetCommand, 1, 1, completePreset, "preset <name>"},
		{"preview", previewCommand, 1, 1, completeLane, "preview <lane>: measure one hit"},
		{"bounce", bounceCommand, 2, 2, completeNone, `bounce "<file>" <bars>`},
		{"reset", resetCommand, 0, 0, completeNone, "rewind the transport and clear effect tails"},
		{"show", showCommand, 0, 0, completeNone, "print the pattern"},
		{"help", helpCommand, 0, 0, completeNone, "list commands"},
	}
}

func playCommand(env *env, args []dub.Node) (string, error) {
	return "", send(env.engine.SetPlaying(true))
}

func stopCommand(env *env, args []dub.Node) (string, error) {
	return "", send(env.engine.SetPlaying(false))
}

func resetCommand(env *env, args []dub.Node) (string, error) {
	return "", send(env.engine.Reset())
}

func send(ok bool) error {
	if !ok {
		return audio.ErrQueueFull
	}
	return nil
}

func bpmCommand(env *env, args []dub.Node) (string, error) {
	var bpm float64
	if err := readArgs(args, &bpm); err != nil {
		return "", err
	}
	if bpm < audio.MinBpm || bpm > audio.MaxBpm {
		return "", fmt.Errorf("out of range: %v", bpm)
	}
	return "", env.setBpm(bpm)
}

func laneArg(node dub.Node) (int, error) {
	switch v := node.(type) {
	case dub.Identifier:
		if lane, ok := audio.LookupLane(string(v)); ok {
			return lane, nil
		}
		return 0, fmt.Errorf("unknown lane: %s", v)
	case dub.Int:
		if audio.LaneName(int(v)) != "" {
			return int(v), nil
		}
		return 0, fmt.Errorf("unknown lane: %d", v)
	default:
		return 0, errors.New("argument error: expected a lane")
	}
}

func stepCommand(env *env, args []dub.Node) (string, error) {
	lane, err := laneArg(args[0])
	if err != nil {
		return "", err
	}
	velocity := 1.
	var expr dub.MatchExpr
	if len(args) == 3 {
		err = readArgs(args[1:], &velocity, &expr)
	} else {
		err = readArgs(args[1:], &expr)
	}
	if err != nil {
		return "", err
	}
	if velocity < 0 || velocity > 1 {
		return "", fmt.Errorf("velocity out of range: %v", velocity)
	}
	steps, err := expr.Steps()
	if err != nil {
		return "", err
	}
	for _, step := range steps {
		if err := env.setStep(lane, step, true, velocity); err != nil {
			return "", err
		}
	}
	return "", nil
}

func stepArg(node dub.Node) (int, error) {
	n, ok := node.(dub.Int)
	if !ok {
		return 0, errors.New("argument error: expected a step number")
	}
	if n < 1 || n > audio.Steps {
		return 0, fmt.Errorf("out of range: %v", n)
	}
	return int(n) - 1, nil
}

func toggleCommand(env *env, args []dub.Node) (string, error) {
	lane, err := laneArg(args[0])
	if err != nil {
		return "", err
	}
	var steps []int
	for _, arg := range args[1:] {
		step, err := stepArg(arg)
		if err != nil {
			return "", err
		}
		steps = append(steps, step)
	}
	for _, step := range steps {
		s := env.pattern.Get(lane, step)
		velocity := s.Velocity
		if !s.On && velocity == 0 {
			velocity = 1
		}
		if err := env.setStep(lane, step, !s.On, velocity); err != nil {
			return "", err
		}
	}
	return "", nil
}

func velCommand(env *env, args []dub.Node) (string, error) {
	lane, err := laneArg(args[0])
	if err != nil {
		return "", err
	}
	step, err := stepArg(args[1])
	if err != nil {
		return "", err
	}
	var velocity float64
	if err := readArgs(args[2:], &velocity); err != nil {
		return "", err
	}
	return "", env.setStep(lane, step, true, velocity)
}

func clearCommand(env *env, args []dub.Node) (string, error) {
	if len(args) == 0 {
		if !env.engine.ClearPattern() {
			return "", audio.ErrQueueFull
		}
		env.pattern.Clear()
		return "", nil
	}
	lane, err := laneArg(args[0])
	if err != nil {
		return "", err
	}
	for step := 0; step < audio.Steps; step++ {
		if err := env.setStep(lane, step, false, 0); err != nil {
			return "", err
		}
	}
	return "", nil
}

func hitCommand(env *env, args []dub.Node) (string, error) {
	lane, err := laneArg(args[0])
	if err != nil {
		return "", err
	}
	velocity := 1.
	if len(args) == 2 {
		if err := readArgs(args[1:], &velocity); err != nil {
			return "", err
		}
	}
	return "", send(env.engine.Trigger(lane, velocity))
}

func setCommand(env *env, args []dub.Node) (string, error) {
	var name string
	var value float64
	if err := readArgs(args, &name, &value); err != nil {
		return "", err
	}
	return "", env.engine.Params().Set(name, value)
}

func getCommand(env *env, args []dub.Node) (string, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	v, err := env.engine.Params().Get(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %v", name, v), nil
}

func msCommand(env *env, args []dub.Node) (string, error) {
	var name string
	var ms float64
	if err := readArgs(args, &name, &ms); err != nil {
		return "", err
	}
	id, ok := audio.LookupParam(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", audio.ErrUnknownParam, name)
	}
	sr := env.engine.SampleRate()
	switch id.Curve() {
	case audio.AttackCurve:
		env.engine.Params().Store(id, dsp.AttackCoeffFromMs(ms, sr))
	case audio.DecayCurve:
		env.engine.Params().Store(id, dsp.DecayCoeffFromMs(ms, sr))
	default:
		return "", fmt.Errorf("%s is not an envelope time", name)
	}
	return "", nil
}

func dbCommand(env *env, args []dub.Node) (string, error) {
	var name string
	var db float64
	if err := readArgs(args, &name, &db); err != nil {
		return "", err
	}
	return "", env.engine.Params().Set(name, dsp.DbToLin(db))
}

func paramsCommand(env *env, args []dub.Node) (string, error) {
	var prefix string
	if len(args) == 1 {
		if err := readArgs(args, &prefix); err != nil {
			return "", err
		}
	}
	var lines []string
	for _, name := range audio.ParamNames() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		v, _ := env.engine.Params().Get(name)
		lines = append(lines, fmt.Sprintf("%-22s %v", name, v))
	}
	return strings.Join(lines, "\n"), nil
}

func presetCommand(env *env, args []dub.Node) (string, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	return "", audio.LoadPreset(name, env.engine.Params(), env.engine.SampleRate())
}

func previewCommand(env *env, args []dub.Node) (string, error) {
	lane, err := laneArg(args[0])
	if err != nil {
		return "", err
	}
	sr := env.engine.SampleRate()
	samples, err := bounce.Preview(env.engine.Params(), lane, sr, bounce.DefaultPreviewLength)
	if err != nil {
		return "", err
	}
	return bounce.Analyze(samples, sr).String(), nil
}

// bounceCommand renders the current pattern and parameters on a separate
// engine so the one that is playing is not disturbed.
func bounceCommand(env *env, args []dub.Node) (string, error) {
	var file string
	var bars int
	if err := readArgs(args, &file, &bars); err != nil {
		return "", err
	}
	if bars < 1 {
		return "", fmt.Errorf("out of range: %v", bars)
	}
	e := audio.NewEngine()
	if err := e.Prepare(env.engine.SampleRate(), env.engine.MaxBlockSize()); err != nil {
		return "", err
	}
	for _, name := range audio.ParamNames() {
		v, _ := env.engine.Params().Get(name)
		if err := e.Params().Set(name, v); err != nil {
			return "", err
		}
	}
	for lane := 0; lane < audio.Lanes; lane++ {
		for step := 0; step < audio.Steps; step++ {
			if s := env.pattern.Get(lane, step); s.On && !e.SetStep(lane, step, true, s.Velocity) {
				return "", audio.ErrQueueFull
			}
		}
	}

	f, err := os.Create(file)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := bounce.Bounce(f, e, bounce.Options{Bars: bars, Bpm: env.bpm}); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d bars to %s", bars, file), nil
}

func showCommand(env *env, args []dub.Node) (string, error) {
	var sb strings.Builder
	renderGrid(&sb, snapshotGrid(env), env.color)
	return strings.TrimRight(sb.String(), "\n"), nil
}

func helpCommand(env *env, args []dub.Node) (string, error) {
	names := make([]string, 0, len(commands))
	help := make(map[string]string, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.name)
		help[cmd.name] = cmd.help
	}
	sort.Strings(names)
	var lines []string
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%-8s %s", name, help[name]))
	}
	return strings.Join(lines, "\n"), nil
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch v := arg.(type) {
			case dub.Int:
				*p = float64(v)
			case dub.Float:
				*p = float64(v)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
			if math.IsNaN(*p) {
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(n)
		case *dub.MatchExpr:
			expr, ok := arg.(dub.MatchExpr)
			if !ok {
				return fmt.Errorf("argument error: expected a match expression")
			}
			*p = expr
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/mrdg/drumbox/audio"
	"github.com/mrdg/drumbox/dub"
)

var errQuit = errors.New("quit")

// env is the control side of a session. The engine queue has a single
// producer, so every command runs under mu.
type env struct {
	mu      sync.Mutex
	engine  *audio.Engine
	pattern audio.Pattern // what the commands have sent so far
	bpm     float64
	out     io.Writer
	color   bool
}

func newEnv(e *audio.Engine, out io.Writer, color bool) *env {
	return &env{engine: e, bpm: 120, out: out, color: color}
}

// setBpm and setStep only update the mirror once the engine has accepted
// the change.
func (e *env) setBpm(bpm float64) error {
	if !e.engine.SetBpm(bpm) {
		return audio.ErrQueueFull
	}
	e.bpm = max(audio.MinBpm, min(audio.MaxBpm, bpm))
	return nil
}

func (e *env) setStep(lane, step int, on bool, velocity float64) error {
	if !e.engine.SetStep(lane, step, on, velocity) {
		return audio.ErrQueueFull
	}
	e.pattern.Set(lane, step, on, velocity)
	return nil
}

func (e *env) eval(input string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	command, err := dub.Parse(input)
	if err != nil {
		return "", err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if n := len(command.Args); n < cmd.minArgs || (cmd.maxArgs >= 0 && n > cmd.maxArgs) {
			return "", fmt.Errorf("%s: wrong number of arguments: %s", cmd.name, cmd.arity())
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

// runScript evaluates a file of commands, one per line. Lines starting with
// '#' are comments.
func (e *env) runScript(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result, err := e.eval(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, n, err)
		}
		if result != "" {
			fmt.Fprintln(e.out, result)
		}
	}
	return scanner.Err()
}

func completer() *readline.PrefixCompleter {
	params := readline.PcItemDynamic(func(string) []string { return audio.ParamNames() })
	lanes := func() []readline.PrefixCompleterInterface {
		var items []readline.PrefixCompleterInterface
		for lane := 0; lane < audio.Lanes; lane++ {
			items = append(items, readline.PcItem(audio.LaneName(lane)))
		}
		return items
	}
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		switch cmd.complete {
		case completeParam:
			items = append(items, readline.PcItem(cmd.name, params))
		case completeLane:
			items = append(items, readline.PcItem(cmd.name, lanes()...))
		case completePreset:
			var presets []readline.PrefixCompleterInterface
			for _, name := range audio.PresetNames() {
				presets = append(presets, readline.PcItem(name))
			}
			items = append(items, readline.PcItem(cmd.name, presets...))
		default:
			items = append(items, readline.PcItem(cmd.name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

func repl(ctx context.Context, env *env) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "> ",
		AutoComplete: completer(),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return errQuit
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Println(err)
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return errQuit
		}
		if result, err := env.eval(line); err != nil {
			fmt.Fprintln(env.out, err)
		} else if result != "" {
			fmt.Fprintln(env.out, result)
		}
	}
}

package audio

import (
	"sync/atomic"
)

const queueSize = 1024

type commandKind int

const (
	cmdToggleStep commandKind = iota
	cmdSetStep
	cmdSetBpm
	cmdSetPlaying
	cmdClearPattern
	cmdReset
	cmdTrigger
)

// Command is a discrete control event applied by the audio goroutine as a whole.
type Command struct {
	kind     commandKind
	lane     int
	step     int
	on       bool
	velocity float64
	bpm      float64
}

func ToggleStep(lane, step int, on bool) Command {
	return Command{kind: cmdToggleStep, lane: lane, step: step, on: on, velocity: 1}
}

func SetStep(lane, step int, on bool, velocity float64) Command {
	return Command{kind: cmdSetStep, lane: lane, step: step, on: on, velocity: velocity}
}

func SetBpm(bpm float64) Command { return Command{kind: cmdSetBpm, bpm: bpm} }

func SetPlaying(on bool) Command { return Command{kind: cmdSetPlaying, on: on} }

func ClearPattern() Command { return Command{kind: cmdClearPattern} }

func ResetTransport() Command { return Command{kind: cmdReset} }

// TriggerLane plays one hit on a lane.
func TriggerLane(lane int, velocity float64) Command {
	return Command{kind: cmdTrigger, lane: lane, velocity: velocity}
}

// commandQueue is a lock-free spsc queue.
type commandQueue struct {
	commands    []Command
	read, write atomic.Uint32
}

func newCommandQueue(size int) *commandQueue {
	if size <= 0 || size&(size-1) != 0 {
		panic("command queue size must be a power of 2")
	}
	return &commandQueue{commands: make([]Command, size)}
}

// push appends cmd and reports whether there was room for it.
func (q *commandQueue) push(cmd Command) bool {
	write := q.write.Load()
	if write-q.read.Load() == uint32(len(q.commands)) {
		return false
	}
	q.commands[write%uint32(len(q.commands))] = cmd
	q.write.Store(write + 1)
	return true
}

// drain calls f for every queued command in FIFO order.
func (q *commandQueue) drain(f func(Command)) {
	read := q.read.Load()
	write := q.write.Load()
	for read != write {
		f(q.commands[read%uint32(len(q.commands))])
		read++
	}
	q.read.Store(read)
}

func (q *commandQueue) len() int {
	return int(q.write.Load() - q.read.Load())
}

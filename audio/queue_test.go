package audio

import (
	"context"
	"runtime"
	"testing"
)

func TestCommandQueueFull(t *testing.T) {
	q := newCommandQueue(4)
	for i := 0; i < 4; i++ {
		if !q.push(SetBpm(float64(100 + i))) {
			t.Fatalf("push %d should fit", i)
		}
	}
	if q.push(SetBpm(200)) {
		t.Errorf("push into a full queue should fail")
	}
	if want, got := 4, q.len(); want != got {
		t.Errorf("want %v queued commands, got %v", want, got)
	}

	var bpms []float64
	q.drain(func(cmd Command) {
		bpms = append(bpms, cmd.bpm)
	})
	if want, got := 4, len(bpms); want != got {
		t.Fatalf("want %v commands, got %v", want, got)
	}
	for i, bpm := range bpms {
		if want := float64(100 + i); want != bpm {
			t.Errorf("out of order command: want %v, got %v", want, bpm)
		}
	}
	if !q.push(SetBpm(200)) {
		t.Errorf("push after drain should succeed")
	}
}

func TestCommandQueuePowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for a queue size that is not a power of 2")
		}
	}()
	newCommandQueue(100)
}

func TestCommandQueue(t *testing.T) {
	q := newCommandQueue(64)

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	var steps []int
	collect := func(cmd Command) {
		steps = append(steps, cmd.step)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				q.drain(collect)
				done <- struct{}{}
				return
			default:
				if q.len() == 0 {
					runtime.Gosched()
				}
				q.drain(collect)
			}
		}
	}()

	// Yield on a full queue so a single CPU still makes progress.
	const numCommands = 200_000
	for n := 0; n < numCommands; {
		if q.push(Command{step: n}) {
			n++
		} else {
			runtime.Gosched()
		}
	}

	cancel()
	<-done

	if len(steps) != numCommands {
		t.Errorf("wrong number of commands: want %v, got %v", numCommands, len(steps))
	}

	prev := -1
	for _, step := range steps {
		if want, got := prev+1, step; want != got {
			t.Fatalf("discontinuous command sequence: want: %v, got %v", want, got)
		}
		prev++
	}
}

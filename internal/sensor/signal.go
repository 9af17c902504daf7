package sensor

import (
	"fmt"
	"math"
	"os"
	"sync"

	"go.starlark.net/starlark"

	"github.com/stagelink-labs/stagelink/internal/stage"
)

// Signal produces a position for one sensor at a point in time. t is the
// elapsed time in seconds since the run started.
type Signal interface {
	Sample(t float64, index int) (stage.Vec3, error)
}

// OrbitSignal is the built-in source: each sensor circles the origin at a
// fixed height, phase-shifted so the sensors spread out evenly.
type OrbitSignal struct {
	Radius float64
	Height float64
	Count  int
}

func (s *OrbitSignal) Sample(t float64, index int) (stage.Vec3, error) {
	phase := 0.0
	if s.Count > 0 {
		phase = 2 * math.Pi * float64(index) / float64(s.Count)
	}
	return stage.Vec3{
		s.Radius * math.Sin(t+phase),
		s.Height,
		s.Radius * math.Cos(t+phase),
	}, nil
}

// ScriptSignal evaluates a Starlark script that exports
// sample(t, index) returning a sequence of three numbers.
type ScriptSignal struct {
	mu     sync.Mutex
	thread *starlark.Thread
	fn     starlark.Callable
}

// LoadScriptSignal executes the .star file and binds its sample function.
func LoadScriptSignal(path string) (*ScriptSignal, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signal script: %w", err)
	}

	thread := &starlark.Thread{
		Name: fmt.Sprintf("load:%s", path),
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(os.Stderr, msg)
		},
	}

	globals, err := starlark.ExecFile(thread, path, content, nil) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, fmt.Errorf("signal script error: %w", err)
	}

	sample, ok := globals["sample"]
	if !ok {
		return nil, fmt.Errorf("signal script %s does not define sample(t, index)", path)
	}
	fn, ok := sample.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("signal script %s: sample is %s, not a function", path, sample.Type())
	}

	return &ScriptSignal{thread: thread, fn: fn}, nil
}

// Sample calls the script's sample function. Starlark threads are not safe
// for concurrent use, so calls are serialized.
func (s *ScriptSignal) Sample(t float64, index int) (stage.Vec3, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := starlark.Tuple{starlark.Float(t), starlark.MakeInt(index)}
	result, err := starlark.Call(s.thread, s.fn, args, nil)
	if err != nil {
		return stage.Vec3{}, fmt.Errorf("sample(%v, %d): %w", t, index, err)
	}

	seq, ok := result.(starlark.Indexable)
	if !ok || seq.Len() != 3 {
		return stage.Vec3{}, fmt.Errorf("sample must return three numbers, got %s", result.Type())
	}

	var pos stage.Vec3
	for i := range 3 {
		f, ok := starlark.AsFloat(seq.Index(i))
		if !ok {
			return stage.Vec3{}, fmt.Errorf("sample component %d is %s, not a number", i, seq.Index(i).Type())
		}
		pos[i] = f
	}
	return pos, nil
}

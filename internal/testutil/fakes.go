// Package testutil provides a fake recognition engine for tests.
package testutil

import (
	"errors"
	"sync"

	"gorgonia.org/tensor"
)

// ErrForward is returned by Forward when the engine is set to fail.
var ErrForward = errors.New("fake forward error")

// Script picks the class sequence emitted for one batch row. pixels is that
// row's (C, H, W) slice of the input batch.
type Script func(row int, pixels []float32) []int

// FakeEngine implements model.Engine. Each row's scripted class sequence is
// turned into one-hot logits.
type FakeEngine struct {
	mu sync.Mutex

	steps, classes int
	script         Script

	calls       int
	closed      bool
	failOnRun   bool
	wrongOutput bool
}

// NewFakeEngine returns an engine producing (N, steps, classes) logits.
func NewFakeEngine(steps, classes int, script Script) *FakeEngine {
	return &FakeEngine{steps: steps, classes: classes, script: script}
}

// FailOnForward makes Forward return an error.
func (e *FakeEngine) FailOnForward(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failOnRun = fail
}

// DropRow makes Forward return one row fewer than it was given.
func (e *FakeEngine) DropRow(drop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wrongOutput = drop
}

// Forward simulates a network run
func (e *FakeEngine) Forward(batch *tensor.Dense) (*tensor.Dense, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	if e.closed {
		return nil, errors.New("fake engine closed")
	}
	if e.failOnRun {
		return nil, ErrForward
	}

	n := batch.Shape()[0]
	per := batch.Shape().TotalSize() / n
	pixels := batch.Data().([]float32)
	if e.wrongOutput {
		n--
	}

	logits := make([]float32, n*e.steps*e.classes)
	for row := 0; row < n; row++ {
		var seq []int
		if e.script != nil {
			seq = e.script(row, pixels[row*per:(row+1)*per])
		}
		for t := 0; t < e.steps; t++ {
			class := 0
			if t < len(seq) {
				class = seq[t]
			}
			logits[(row*e.steps+t)*e.classes+class] = 10
		}
	}
	return tensor.New(tensor.WithShape(n, e.steps, e.classes), tensor.WithBacking(logits)), nil
}

// Calls returns how many times Forward ran.
func (e *FakeEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Closed reports whether Close was called.
func (e *FakeEngine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *FakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

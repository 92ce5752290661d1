// internal/worker/worker.go
// Package worker runs analyses off the caller's goroutine. Every submission
// gets a monotonically increasing request id; only the outcome of the latest
// request is delivered, superseded work is cancelled, and Close cancels
// whatever is still pending.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/mwiater/voi/internal/analysis"
	"github.com/mwiater/voi/internal/logging"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("worker: dispatcher closed")

// Job is one analysis request.
type Job struct {
	Scenario analysis.Scenario
	Options  analysis.Options
}

// Outcome is the answer to a request.
type Outcome struct {
	RequestID uint64
	Report    analysis.Report
	Err       error
}

// ComputeFunc performs a job. It must return promptly once ctx is cancelled.
type ComputeFunc func(ctx context.Context, job Job) (analysis.Report, error)

// RunAnalysis is the default ComputeFunc.
func RunAnalysis(ctx context.Context, job Job) (analysis.Report, error) {
	return analysis.Run(ctx, job.Scenario, job.Options)
}

// Dispatcher hands jobs to background goroutines.
type Dispatcher struct {
	parent  context.Context
	compute ComputeFunc

	mu      sync.Mutex
	latest  uint64
	cancel  context.CancelFunc
	closed  bool
	results chan Outcome
	wg      sync.WaitGroup
}

// New returns a dispatcher whose jobs are children of parent. A nil compute
// runs analysis.Run.
func New(parent context.Context, compute ComputeFunc) *Dispatcher {
	if compute == nil {
		compute = RunAnalysis
	}
	return &Dispatcher{
		parent:  parent,
		compute: compute,
		results: make(chan Outcome, 1),
	}
}

// Submit starts job in the background and returns its request id. Any job
// still running from an earlier submission is cancelled.
func (d *Dispatcher) Submit(job Job) (uint64, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, ErrClosed
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.latest++
	id := d.latest
	ctx, cancel := context.WithCancel(d.parent)
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	logging.LogCalculation("dispatch", id, map[string]any{"scenario": job.Scenario.Name})
	go func() {
		defer d.wg.Done()
		defer cancel()
		rep, err := d.compute(ctx, job)
		d.deliver(Outcome{RequestID: id, Report: rep, Err: err})
	}()
	return id, nil
}

// deliver publishes o if it answers the latest request; anything older is
// dropped. The channel holds at most the newest outcome.
func (d *Dispatcher) deliver(o Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || o.RequestID != d.latest {
		logging.LogCalculation("discard", o.RequestID, map[string]any{"latest": d.latest})
		return
	}
	select {
	case <-d.results:
	default:
	}
	d.results <- o
}

// Results delivers outcomes for the latest request. It is closed by Close.
func (d *Dispatcher) Results() <-chan Outcome { return d.results }

// Latest returns the id of the most recent submission.
func (d *Dispatcher) Latest() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// Accept reports whether o still answers the latest request. An outcome read
// from Results can go stale if another job was submitted in the meantime.
func (d *Dispatcher) Accept(o Outcome) bool {
	return o.RequestID == d.Latest()
}

// Await blocks until the outcome for id arrives, ctx ends or the dispatcher
// closes.
func (d *Dispatcher) Await(ctx context.Context, id uint64) (Outcome, error) {
	for {
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case o, ok := <-d.results:
			if !ok {
				return Outcome{}, ErrClosed
			}
			if o.RequestID == id {
				return o, nil
			}
		}
	}
}

// Close cancels pending work, waits for background goroutines to exit and
// closes the results channel.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()

	d.wg.Wait()
	close(d.results)
}

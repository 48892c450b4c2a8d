package portfolio

import (
	"context"
	"errors"
	"sync"

	"github.com/bastiangx/tickerspell/pkg/strategy"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrRunnerClosed is returned by Submit after Close.
var ErrRunnerClosed = errors.New("runner closed")

// Job asks for portfolios of Text. An empty Strategies list means all five.
type Job struct {
	ID         string
	Text       string
	Strategies []strategy.Strategy
}

// Result is the single completion message of a job. Portfolios follow the
// order of the job's strategies.
type Result struct {
	JobID      string
	Portfolios []*Portfolio
	Err        error
}

// Runner executes builds off the caller's goroutine, at most workers at a time.
// Each submitted job delivers exactly one Result.
type Runner struct {
	engine *Engine
	slots  chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewRunner returns a Runner over engine. workers < 1 means 1.
func NewRunner(engine *Engine, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		engine: engine,
		slots:  make(chan struct{}, workers),
	}
}

// Submit starts job in the background and returns the channel its Result is
// delivered on. A job without an ID gets a fresh one. Cancelling ctx stops
// the build at the next dp cell.
func (r *Runner) Submit(ctx context.Context, job Job) (<-chan Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRunnerClosed
	}

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if len(job.Strategies) == 0 {
		job.Strategies = strategy.All
	}

	done := make(chan Result, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		done <- r.run(ctx, job)
		close(done)
	}()
	return done, nil
}

func (r *Runner) run(ctx context.Context, job Job) Result {
	select {
	case r.slots <- struct{}{}:
		defer func() { <-r.slots }()
	case <-ctx.Done():
		return Result{JobID: job.ID, Err: ctx.Err()}
	}

	log.Debugf("Job %s: %d strategies, %d chars", job.ID, len(job.Strategies), len(job.Text))

	res := Result{JobID: job.ID}
	if len(job.Strategies) == 1 {
		p, err := r.engine.Build(ctx, job.Text, job.Strategies[0])
		if err != nil {
			res.Err = err
			return res
		}
		res.Portfolios = []*Portfolio{p}
		return res
	}

	all, err := r.engine.BuildAll(ctx, job.Text)
	if err != nil {
		res.Err = err
		return res
	}
	for _, s := range job.Strategies {
		p, ok := all[s]
		if !ok {
			res.Err = strategy.ErrUnknownStrategy
			res.Portfolios = nil
			return res
		}
		res.Portfolios = append(res.Portfolios, p)
	}
	return res
}

// Run submits job and waits for its result.
func (r *Runner) Run(ctx context.Context, job Job) Result {
	done, err := r.Submit(ctx, job)
	if err != nil {
		return Result{JobID: job.ID, Err: err}
	}
	return <-done
}

// Close rejects new jobs and waits for running ones to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}

// Package batch drives metadata generation over the queue, one asset at a time.
//
// The Orchestrator owns the queue store and is the only writer of generation
// results. A batch run captures the unprocessed entries when it starts and
// walks them in ascending index order; a failure on one entry is logged and
// the run moves on. Entries are tracked by their asset token, so an entry that
// moves while the run is in flight still receives its result and an entry that
// is removed is skipped.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zepiy/stockmeta/internal/models"
	"github.com/zepiy/stockmeta/internal/queue"
)

var (
	// ErrBusy is returned when a generation is already in flight
	ErrBusy = errors.New("a generation is already in progress")

	// ErrAssetRemoved is returned when the asset left the queue before its result was stored
	ErrAssetRemoved = errors.New("asset was removed from the queue")
)

// Generator produces metadata for one asset
type Generator interface {
	Generate(ctx context.Context, asset models.Asset) (*models.GenerationResult, error)
}

// State of the batch state machine
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
)

// Progress describes the current or most recent batch run.
// Index is the queue position being generated, or -1.
type Progress struct {
	State     State `json:"state"`
	Current   int   `json:"current"`
	Total     int   `json:"total"`
	Index     int   `json:"index"`
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
	Skipped   int   `json:"skipped"`
}

// Failure records one entry that could not be generated during a batch
type Failure struct {
	Index int
	Asset string
	Err   error
}

// Summary is the outcome of a batch run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Failures  []Failure
}

// Orchestrator runs single and batch generations against a queue store
type Orchestrator struct {
	store     *queue.Store
	generator Generator

	// run serializes generations: one request in flight at a time
	run sync.Mutex

	mu       sync.Mutex
	progress Progress
	watchers map[chan Progress]struct{}
}

// New returns an orchestrator over store
func New(store *queue.Store, generator Generator) *Orchestrator {
	return &Orchestrator{
		store:     store,
		generator: generator,
		progress:  Progress{State: StateIdle, Index: queue.NoSelection},
		watchers:  make(map[chan Progress]struct{}),
	}
}

// Store returns the queue store the orchestrator writes to
func (o *Orchestrator) Store() *queue.Store {
	return o.store
}

// Busy reports whether a generation is in flight
func (o *Orchestrator) Busy() bool {
	if o.run.TryLock() {
		o.run.Unlock()
		return false
	}
	return true
}

// Progress returns the current progress value
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Watch returns a channel that receives the current progress immediately and
// then every change until ctx is done. Slow readers only see the latest value.
func (o *Orchestrator) Watch(ctx context.Context) <-chan Progress {
	ch := make(chan Progress, 1)

	o.mu.Lock()
	o.watchers[ch] = struct{}{}
	ch <- o.progress
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.mu.Lock()
		delete(o.watchers, ch)
		close(ch)
		o.mu.Unlock()
	}()
	return ch
}

func (o *Orchestrator) update(fn func(p *Progress)) {
	o.mu.Lock()
	defer o.mu.Unlock()

	fn(&o.progress)
	p := o.progress
	for ch := range o.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- p:
		default:
		}
	}
}

// GenerateOne regenerates the entry at index. Its result is cleared first and
// stays empty when generation fails; the error is returned to the caller.
func (o *Orchestrator) GenerateOne(ctx context.Context, index int) (*models.GenerationResult, error) {
	if !o.run.TryLock() {
		return nil, ErrBusy
	}
	defer o.run.Unlock()

	entry, ok := o.store.Get(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d", queue.ErrIndexOutOfRange, index)
	}
	o.store.SetResultByID(entry.Asset.ID, nil)

	result, err := o.generator.Generate(ctx, entry.Asset)
	if err != nil {
		slog.Error("Failed to generate metadata", "index", index, "asset", entry.Asset.Name, "err", err)
		return nil, err
	}

	if _, ok := o.store.SetResultByID(entry.Asset.ID, result); !ok {
		return nil, ErrAssetRemoved
	}
	return result, nil
}

// GenerateAll generates every entry that has no result when the call starts.
// Entries are processed sequentially in ascending index order. Per-entry
// failures are logged and recorded in the summary; they never stop the run.
// The run stops early only when ctx is done.
func (o *Orchestrator) GenerateAll(ctx context.Context) (Summary, error) {
	if !o.run.TryLock() {
		return Summary{}, ErrBusy
	}
	defer o.run.Unlock()

	return o.generateAll(ctx)
}

// Start launches a batch run in the background. The run is claimed before
// Start returns, so a second Start or GenerateOne sees ErrBusy immediately.
// The returned channel receives the summary once the run ends.
func (o *Orchestrator) Start(ctx context.Context) (<-chan Summary, error) {
	if !o.run.TryLock() {
		return nil, ErrBusy
	}

	done := make(chan Summary, 1)
	go func() {
		defer o.run.Unlock()
		summary, err := o.generateAll(ctx)
		if err != nil {
			slog.Warn("Batch generation stopped early", "err", err)
		}
		done <- summary
		close(done)
	}()
	return done, nil
}

func (o *Orchestrator) generateAll(ctx context.Context) (Summary, error) {
	targets := o.store.Unprocessed()
	if len(targets) == 0 {
		return Summary{}, nil
	}

	summary := Summary{Total: len(targets)}
	o.update(func(p *Progress) {
		*p = Progress{State: StateRunning, Total: len(targets), Index: queue.NoSelection}
	})
	slog.Info("Batch generation started", "total", len(targets))

	defer func() {
		o.update(func(p *Progress) {
			p.State = StateDone
			p.Index = queue.NoSelection
		})
		slog.Info("Batch generation finished",
			"total", summary.Total,
			"succeeded", summary.Succeeded,
			"failed", summary.Failed,
			"skipped", summary.Skipped,
		)
	}()

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		id := target.Asset.ID
		index := o.store.IndexOf(id)
		o.update(func(p *Progress) {
			p.Current++
			p.Index = index
		})

		if index < 0 {
			slog.Info("Skipping asset removed during batch", "asset", target.Asset.Name)
			summary.Skipped++
			o.update(func(p *Progress) { p.Skipped++ })
			continue
		}

		result, err := o.generator.Generate(ctx, target.Asset)
		if err != nil {
			slog.Warn("Batch item failed", "index", index, "asset", target.Asset.Name, "err", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Index: index, Asset: target.Asset.Name, Err: err})
			o.update(func(p *Progress) { p.Failed++ })
			continue
		}

		if _, ok := o.store.SetResultByID(id, result); !ok {
			slog.Info("Discarding result for asset removed during batch", "asset", target.Asset.Name)
			summary.Skipped++
			o.update(func(p *Progress) { p.Skipped++ })
			continue
		}
		summary.Succeeded++
		o.update(func(p *Progress) { p.Succeeded++ })
	}

	return summary, nil
}

// Package scheduler evaluates every opener on a pool of workers sharing one
// solver and keeps the best.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/benjaminjkraft/wordle-openers/internal/memo"
	"github.com/benjaminjkraft/wordle-openers/internal/solver"
)

type Options struct {
	// Workers is the number of goroutines; 0 means one per CPU.
	Workers int
	// Openers restricts the run to these guess indices. Nil means every
	// guess.
	Openers []int
	// Output receives one line per finished opener. Nil discards them.
	Output io.Writer
	// Bar, if set, receives a progress bar.
	Bar io.Writer
	Logger zerolog.Logger
	// TracerProvider receives one span per opener. Nil means the global
	// provider.
	TracerProvider trace.TracerProvider
}

// OpenerResult is the value of one opener.
type OpenerResult struct {
	Guess  int
	Word   string
	Cost   float64
	Height int
}

type Summary struct {
	Best     int
	BestWord string
	BestCost float64
	// Results holds every finished opener in guess order.
	Results []OpenerResult
	Stats   solver.Stats
	Elapsed time.Duration
}

// Scheduler hands openers to workers through a shared ticket counter.
type Scheduler struct {
	solver  *solver.Solver
	opts    Options
	openers []int
	tracer  trace.Tracer

	ticket atomic.Int64

	mu       sync.Mutex
	best     OpenerResult
	results  []OpenerResult
	stats    solver.Stats
	finished int
}

func New(s *solver.Solver, opts Options) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	openers := opts.Openers
	if openers == nil {
		openers = s.AllGuesses().Slice()
	}
	return &Scheduler{
		solver:  s,
		opts:    opts,
		openers: openers,
		tracer:  opts.TracerProvider.Tracer("wordle-openers/scheduler"),
		best:    OpenerResult{Guess: memo.NoGuess, Cost: math.Inf(1)},
	}
}

// Run evaluates every opener. It only returns early if ctx is done, which
// is checked between openers.
func (sc *Scheduler) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sc.opts.Logger.Info().
		Int("workers", sc.opts.Workers).
		Int("openers", len(sc.openers)).
		Msg("starting search")

	var bar *progressbar.ProgressBar
	if sc.opts.Bar != nil {
		bar = progressbar.NewOptions(len(sc.openers),
			progressbar.OptionSetWriter(sc.opts.Bar),
			progressbar.OptionSetDescription("openers"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
		)
	}

	g, ctx := errgroup.WithContext(ctx)
	for worker := range sc.opts.Workers {
		g.Go(func() error {
			return sc.work(ctx, worker, bar)
		})
	}
	err := g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	results := slices.Clone(sc.results)
	slices.SortFunc(results, func(a, b OpenerResult) int { return a.Guess - b.Guess })
	summary := Summary{
		Best:     sc.best.Guess,
		BestWord: sc.best.Word,
		BestCost: sc.best.Cost,
		Results:  results,
		Stats:    sc.stats,
		Elapsed:  time.Since(start),
	}
	if err != nil {
		return summary, fmt.Errorf("search interrupted after %d of %d openers: %w", sc.finished, len(sc.openers), err)
	}
	return summary, nil
}

func (sc *Scheduler) work(ctx context.Context, worker int, bar *progressbar.ProgressBar) error {
	search := sc.solver.NewSearch()
	oracle := sc.solver.Oracle()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		i := int(sc.ticket.Add(1) - 1)
		if i >= len(sc.openers) {
			return nil
		}

		guess := sc.openers[i]
		word := oracle.Guess(guess)
		_, span := sc.tracer.Start(ctx, "EvaluateOpener", trace.WithAttributes(
			attribute.String("opener", word),
			attribute.Int("worker", worker),
		))
		r := search.EvaluateOpener(guess)
		span.SetAttributes(
			attribute.Float64("cost", r.Cost),
			attribute.Int("height", r.Height),
			attribute.Int64("nodes", search.Stats.NodesVisited),
		)
		span.End()

		sc.finish(OpenerResult{Guess: guess, Word: word, Cost: r.Cost, Height: r.Height}, &search.Stats, bar)
		search.Stats = solver.Stats{}
	}
}

// finish records one opener. It is the only place workers synchronize.
func (sc *Scheduler) finish(r OpenerResult, stats *solver.Stats, bar *progressbar.ProgressBar) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.results = append(sc.results, r)
	sc.stats.Merge(stats)
	sc.finished++

	// equal costs go to the lower index so the answer does not depend on
	// which worker finished first
	newBest := r.Cost < sc.best.Cost || (r.Cost == sc.best.Cost && r.Guess < sc.best.Guess)
	if newBest {
		sc.best = r
	}

	marker := ""
	if newBest {
		marker = "\t[NEW BEST]"
	}
	fmt.Fprintf(sc.opts.Output, "Solved %s to %.6f%s\n", r.Word, r.Cost, marker)
	sc.opts.Logger.Debug().
		Str("opener", r.Word).
		Float64("cost", r.Cost).
		Int("height", r.Height).
		Int64("nodes", stats.NodesVisited).
		Msg("opener done")
	if bar != nil {
		_ = bar.Add(1)
	}
}

// Stats returns the statistics merged so far.
func (sc *Scheduler) Stats() solver.Stats {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.stats
}

// Progress returns how many openers have finished out of the total.
func (sc *Scheduler) Progress() (finished, total int) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.finished, len(sc.openers)
}

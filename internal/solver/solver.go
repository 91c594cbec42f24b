// Package solver computes the expected number of guesses needed to finish a
// game from a candidate state under optimal play.
package solver

import (
	"math"

	"github.com/benjaminjkraft/wordle-openers/internal/memo"
	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

// Options tunes the search.
type Options struct {
	// Horizon is the last depth (guesses already made) at which a state
	// can still be played. Past it a state costs FailCost.
	Horizon int
	// FailCost is the cost of a state past the horizon. It is averaged in
	// like any other child cost.
	FailCost float64
	// PruneThreshold is the smallest candidate state for which Prune
	// collapses duplicate guesses.
	PruneThreshold int
}

func DefaultOptions() Options {
	return Options{
		Horizon:        6,
		FailCost:       1e9,
		PruneThreshold: 20,
	}
}

// Solver holds what every search shares: the oracle and the cache. It is safe
// for concurrent use through one Search per goroutine.
type Solver struct {
	oracle *wordle.Oracle
	cache  *memo.Cache
	opts   Options
	all    wordle.GuessSet
}

func New(o *wordle.Oracle, c *memo.Cache, opts Options) *Solver {
	return &Solver{
		oracle: o,
		cache:  c,
		opts:   opts,
		all:    wordle.FullGuessSet(o.NumGuesses()),
	}
}

func (s *Solver) Oracle() *wordle.Oracle { return s.oracle }
func (s *Solver) Cache() *memo.Cache     { return s.cache }
func (s *Solver) Options() Options       { return s.opts }

// AllGuesses returns the unpruned guess set. It must not be modified.
func (s *Solver) AllGuesses() wordle.GuessSet { return s.all }

// Search is one goroutine's view of a Solver: its statistics and scratch
// space. A Search must not be shared between goroutines.
type Search struct {
	*Solver
	Stats Stats

	// signatureHash hashes guess g's signature over live. Prune only
	// requires that equal signatures hash equally.
	signatureHash func(g int) uint64

	live  []int
	cands []candidate
	reps  []int
}

func (s *Solver) NewSearch() *Search {
	w := &Search{Solver: s}
	w.signatureHash = w.fnvSignature
	return w
}

// EvaluateOpener returns the value of opening with guess g against the full
// answer list. The root is never looked up in or stored to the cache.
func (w *Search) EvaluateOpener(g int) memo.Result {
	return w.EvaluateGuess(w.oracle.Root(), g, w.all, 1)
}

// EvaluateGuess returns the value of playing g as guess number depth from s.
// Each non-empty feedback class other than all-green is solved at depth, and
// the costs are averaged weighted by class size. Cost includes g itself.
func (w *Search) EvaluateGuess(s wordle.State, g int, allowed wordle.GuessSet, depth int) memo.Result {
	var counts [wordle.NumPatterns]int
	w.oracle.Partition(&s, g, &counts)

	total := 0.0
	height := 0
	for p, n := range counts {
		if n == 0 || wordle.Pattern(p) == wordle.AllGreen {
			continue
		}
		child := w.oracle.Transition(s, g, wordle.Pattern(p))
		r := w.Solve(child, allowed, depth)
		total += r.Cost * float64(n)
		height = max(height, r.Height)
	}

	return memo.Result{
		Cost:   1 + total/float64(s.Count()),
		Guess:  g,
		Height: height + 1,
	}
}

// Solve returns the value of s after depth guesses, choosing among allowed.
func (w *Search) Solve(s wordle.State, allowed wordle.GuessSet, depth int) memo.Result {
	w.Stats.NodesVisited++

	if depth > w.opts.Horizon {
		return memo.Result{Cost: w.opts.FailCost, Guess: memo.NoGuess}
	}
	switch s.Count() {
	case 0:
		return memo.Result{Guess: memo.NoGuess}
	case 1:
		return memo.Result{Cost: 1, Guess: memo.NoGuess, Height: 1}
	}

	if r, ok := w.cache.Get(s, depth); ok {
		w.Stats.CacheHits++
		return r
	}
	w.Stats.CacheMisses++

	useful := w.Prune(&s, allowed)

	best := memo.Result{Cost: math.Inf(1), Guess: memo.NoGuess}
	for g := range useful.All {
		// first minimum in index order wins ties
		if r := w.EvaluateGuess(s, g, useful, depth+1); r.Cost < best.Cost {
			best = r
		}
	}
	if best.Guess == memo.NoGuess {
		// Nothing in allowed splits s. The result depends on allowed, which
		// is not part of the cache key, so it is not stored. The height makes
		// every ancestor tainted.
		return memo.Result{Cost: w.opts.FailCost, Guess: memo.NoGuess, Height: w.opts.Horizon + 1 - depth}
	}

	if w.cache.Insert(s, depth, best) {
		w.Stats.CacheInserts++
	} else {
		w.Stats.CacheCollisions++
	}
	return best
}

// NextGuess returns the guess to play from s after depth guesses, or false if
// s is empty or past the horizon. A single remaining answer is guessed
// directly.
func (w *Search) NextGuess(s wordle.State, depth int) (int, bool) {
	if depth > w.opts.Horizon || s.Empty() {
		return memo.NoGuess, false
	}
	if s.Count() == 1 {
		for a := range s.All {
			return w.oracle.AnswerGuess(a), true
		}
	}
	r := w.Solve(s, w.all, depth)
	return r.Guess, r.Guess != memo.NoGuess
}

// Package replay plays every answer through a solved strategy and summarizes
// how many guesses each took.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/benjaminjkraft/wordle-openers/internal/solver"
	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

// ErrUnsolved is returned when the strategy has no guess for a state, which
// only happens past the horizon.
var ErrUnsolved = errors.New("no guess available")

// Game is one answer played to the end.
type Game struct {
	Target   string
	Guesses  []string
	Patterns []wordle.Pattern
}

func (g *Game) Won() bool {
	n := len(g.Patterns)
	return n > 0 && g.Patterns[n-1] == wordle.AllGreen
}

func (g *Game) String() string {
	var b strings.Builder
	b.WriteString(g.Target)
	b.WriteString(":")
	for i, guess := range g.Guesses {
		fmt.Fprintf(&b, " %s/%s", guess, g.Patterns[i])
	}
	return b.String()
}

// Play plays target, opening with opener and then following the solver. Every
// state visited is solved through the shared cache, so replaying after a
// search is mostly lookups.
func Play(w *solver.Search, opener, target int) (*Game, error) {
	o := w.Oracle()
	horizon := w.Options().Horizon

	game := &Game{Target: o.Answer(target)}
	s := o.Root()
	guess := opener
	for {
		p := o.Pattern(guess, target)
		game.Guesses = append(game.Guesses, o.Guess(guess))
		game.Patterns = append(game.Patterns, p)
		if p == wordle.AllGreen {
			return game, nil
		}
		if len(game.Guesses) > horizon {
			return game, fmt.Errorf("%s after %d guesses: %w", game.Target, len(game.Guesses), ErrUnsolved)
		}

		s = o.Transition(s, guess, p)
		next, ok := w.NextGuess(s, len(game.Guesses))
		if !ok {
			return game, fmt.Errorf("%s after %d guesses: %w", game.Target, len(game.Guesses), ErrUnsolved)
		}
		guess = next
	}
}

const histSize = 16

// Histogram counts games by number of guesses. Games that were not won are
// counted in the last bucket.
type Histogram [histSize]int

func (h *Histogram) add(g *Game) {
	n := len(g.Guesses)
	if !g.Won() || n >= histSize {
		n = histSize - 1
	}
	h[n]++
}

func (h *Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Print writes one line per non-empty bucket with a running total.
func (h *Histogram) Print(w io.Writer) {
	n := h.Total()
	f := "%" + strconv.Itoa(len(strconv.Itoa(n))) + "d"
	cum := 0
	for i, c := range h {
		if c == 0 {
			continue
		}
		cum += c
		fmt.Fprintf(w, f+": "+f+"/"+f+" (cum. "+f+"/"+f+")\n", i, c, n, cum, n)
	}
}

// Report is the outcome of PlayAll.
type Report struct {
	Opener   string
	Games    map[string]*Game
	ByTarget map[string]*Histogram
	Total    Histogram
	// Failed lists targets the strategy could not finish, with the reason.
	Failed map[string]error
	Stats  solver.Stats
}

// PlayAll plays every answer in parallel with at most workers goroutines.
func PlayAll(ctx context.Context, s *solver.Solver, opener, workers int) (*Report, error) {
	o := s.Oracle()
	n := o.NumAnswers()
	report := &Report{
		Opener:   o.Guess(opener),
		Games:    make(map[string]*Game, n),
		ByTarget: make(map[string]*Histogram, n),
		Failed:   make(map[string]error),
	}
	for a := range n {
		report.ByTarget[o.Answer(a)] = new(Histogram)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for target := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w := s.NewSearch()
			game, err := Play(w, opener, target)
			report.ByTarget[game.Target].add(game)

			mu.Lock()
			defer mu.Unlock()
			report.Games[game.Target] = game
			report.Total.add(game)
			report.Stats.Merge(&w.Stats)
			if err != nil {
				report.Failed[game.Target] = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("replay of %s: %w", report.Opener, err)
	}
	return report, nil
}

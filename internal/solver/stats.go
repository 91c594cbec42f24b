package solver

import (
	"fmt"
	"io"

	"golang.org/x/exp/constraints"
)

// Stats counts what one search did. A Search owns its Stats outright and
// updates them without synchronization; callers merge them into a shared
// total at points where the search is idle.
type Stats struct {
	NodesVisited int64
	CacheHits    int64
	CacheMisses  int64

	PruneCalls       int64
	ActionsChecked   int64 // guesses fed to Prune
	ActionsKept      int64 // guesses Prune returned
	UselessPruned    int64 // constant signature
	DuplicatesPruned int64 // same signature as a kept guess

	CacheInserts    int64
	CacheCollisions int64 // insert lost to an existing entry
}

// Merge adds o into s.
func (s *Stats) Merge(o *Stats) {
	s.NodesVisited += o.NodesVisited
	s.CacheHits += o.CacheHits
	s.CacheMisses += o.CacheMisses
	s.PruneCalls += o.PruneCalls
	s.ActionsChecked += o.ActionsChecked
	s.ActionsKept += o.ActionsKept
	s.UselessPruned += o.UselessPruned
	s.DuplicatesPruned += o.DuplicatesPruned
	s.CacheInserts += o.CacheInserts
	s.CacheCollisions += o.CacheCollisions
}

func percent[T constraints.Integer](part, total T) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

// HitRate is the percentage of cache lookups that hit.
func (s *Stats) HitRate() float64 {
	return percent(s.CacheHits, s.CacheHits+s.CacheMisses)
}

// PruneRate is the percentage of checked guesses that Prune removed.
func (s *Stats) PruneRate() float64 {
	return percent(s.UselessPruned+s.DuplicatesPruned, s.ActionsChecked)
}

// Print writes a human-readable summary.
func (s *Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== SOLVER STATISTICS ===\n")
	fmt.Fprintf(w, "Nodes Visited:    %d\n", s.NodesVisited)
	fmt.Fprintf(w, "Cache Hit Rate:   %.2f%% (%d hits / %d misses)\n", s.HitRate(), s.CacheHits, s.CacheMisses)
	fmt.Fprintf(w, "Cache Inserts:    %d (%d collisions)\n", s.CacheInserts, s.CacheCollisions)
	fmt.Fprintf(w, "-------------------------\n")
	fmt.Fprintf(w, "Pruning Calls:    %d\n", s.PruneCalls)
	fmt.Fprintf(w, "Actions Checked:  %d\n", s.ActionsChecked)
	fmt.Fprintf(w, "Actions Kept:     %d\n", s.ActionsKept)
	fmt.Fprintf(w, "Prune Rate:       %.2f%%\n", s.PruneRate())
	fmt.Fprintf(w, "  - Useless:      %d\n", s.UselessPruned)
	fmt.Fprintf(w, "  - Duplicates:   %d\n", s.DuplicatesPruned)
	fmt.Fprintf(w, "=========================\n")
}

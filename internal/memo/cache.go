// Package memo caches search results by candidate state and depth.
//
// A result is clean when its whole subtree finished within the horizon, so the
// failure cost never entered it and it can be reused at any depth that leaves
// the same room. Everything else is tainted and only reused at the exact depth
// it was computed at.
package memo

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

// NoGuess is the Result.Guess of a state that needs no further decision.
const NoGuess = -1

// Result is the value of a search node.
type Result struct {
	// Cost is the expected number of guesses still needed, or the failure
	// cost if the node is past the horizon.
	Cost float64
	// Guess is the guess index that achieves Cost, or NoGuess.
	Guess int
	// Height is the number of guesses on the deepest branch below the node.
	Height int
}

type taintedKey struct {
	state wordle.State
	depth uint8
}

// Cache is safe for concurrent use. Entries are never replaced: the first
// insert for a key wins.
type Cache struct {
	horizon int
	clean   *xsync.MapOf[wordle.State, Result]
	tainted *xsync.MapOf[taintedKey, Result]
}

// New returns an empty cache for the given horizon. The hints presize the
// clean and tainted tables.
func New(horizon, cleanHint, taintedHint int) *Cache {
	return &Cache{
		horizon: horizon,
		clean: xsync.NewMapOfWithHasher[wordle.State, Result](
			func(s wordle.State, seed uint64) uint64 { return s.Hash(seed) },
			xsync.WithPresize(cleanHint),
		),
		tainted: xsync.NewMapOfWithHasher[taintedKey, Result](
			func(k taintedKey, seed uint64) uint64 { return k.state.Hash(seed ^ uint64(k.depth)) },
			xsync.WithPresize(taintedHint),
		),
	}
}

// Horizon returns the deepest depth at which a state may still be guessed.
func (c *Cache) Horizon() int {
	return c.horizon
}

func (c *Cache) isClean(depth, height int) bool {
	return depth+height <= c.horizon
}

// Get looks up the result for s reached at depth. A clean entry is only used
// if its subtree still fits under the horizon from depth; otherwise the
// depth-specific entry is used, whose height is the smallest one that could
// have made it tainted.
func (c *Cache) Get(s wordle.State, depth int) (Result, bool) {
	if r, ok := c.clean.Load(s); ok && c.isClean(depth, r.Height) {
		return r, true
	}
	if r, ok := c.tainted.Load(taintedKey{s, uint8(depth)}); ok {
		r.Height = c.horizon + 1 - depth
		return r, true
	}
	return Result{}, false
}

// Insert stores r for s reached at depth. It reports false if an entry for
// the key already existed, in which case r is dropped.
func (c *Cache) Insert(s wordle.State, depth int, r Result) bool {
	var loaded bool
	if c.isClean(depth, r.Height) {
		_, loaded = c.clean.LoadOrStore(s, r)
	} else {
		_, loaded = c.tainted.LoadOrStore(taintedKey{s, uint8(depth)}, r)
	}
	return !loaded
}

// Len returns the number of clean and tainted entries.
func (c *Cache) Len() (clean, tainted int) {
	return c.clean.Size(), c.tainted.Size()
}

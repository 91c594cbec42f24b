package memo

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

const horizon = 6

func state(idx ...int) wordle.State {
	var s wordle.State
	for _, i := range idx {
		s.Set(i)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		r     Result
	}{
		{"clean shallow", 1, Result{Cost: 2.5, Guess: 3, Height: 3}},
		{"clean at edge", 4, Result{Cost: 1.5, Guess: 0, Height: 2}},
		{"tainted", 5, Result{Cost: 1e9, Guess: 7, Height: 2}},
		{"past horizon", 6, Result{Cost: 2, Guess: 1, Height: 2}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(horizon, 16, 16)
			s := state(i, 70)
			_, ok := c.Get(s, tt.depth)
			require.False(t, ok)

			require.True(t, c.Insert(s, tt.depth, tt.r))
			got, ok := c.Get(s, tt.depth)
			require.True(t, ok)
			assert.Equal(t, tt.r.Cost, got.Cost)
			assert.Equal(t, tt.r.Guess, got.Guess)
		})
	}
}

func TestCleanEntryReusedAcrossDepths(t *testing.T) {
	c := New(horizon, 0, 0)
	s := state(1, 2, 3)
	c.Insert(s, 3, Result{Cost: 2, Guess: 5, Height: 2})

	clean, tainted := c.Len()
	assert.Equal(t, 1, clean)
	assert.Equal(t, 0, tainted)

	for depth := 1; depth <= 4; depth++ {
		r, ok := c.Get(s, depth)
		require.True(t, ok, "depth %d", depth)
		assert.Equal(t, 2, r.Height)
	}
	// too deep for the subtree to fit
	_, ok := c.Get(s, 5)
	assert.False(t, ok)
}

func TestTaintedEntryIsDepthSpecific(t *testing.T) {
	c := New(horizon, 0, 0)
	s := state(9)
	c.Insert(s, 5, Result{Cost: 3, Guess: 2, Height: 4})

	clean, tainted := c.Len()
	assert.Equal(t, 0, clean)
	assert.Equal(t, 1, tainted)

	r, ok := c.Get(s, 5)
	require.True(t, ok)
	assert.Equal(t, 3.0, r.Cost)
	assert.Equal(t, horizon+1-5, r.Height)

	_, ok = c.Get(s, 4)
	assert.False(t, ok)
	_, ok = c.Get(s, 6)
	assert.False(t, ok)
}

func TestCleanMissFallsThroughToTainted(t *testing.T) {
	c := New(horizon, 0, 0)
	s := state(4, 5)
	c.Insert(s, 1, Result{Cost: 2, Guess: 1, Height: 4})
	c.Insert(s, 4, Result{Cost: 9, Guess: 2, Height: 3})

	r, ok := c.Get(s, 2)
	require.True(t, ok)
	assert.Equal(t, 2.0, r.Cost)

	r, ok = c.Get(s, 4)
	require.True(t, ok)
	assert.Equal(t, 9.0, r.Cost)
	assert.Equal(t, 3, r.Height)
}

func TestFirstInsertWins(t *testing.T) {
	c := New(horizon, 0, 0)
	s := state(0)
	assert.True(t, c.Insert(s, 2, Result{Cost: 1.5, Guess: 1, Height: 2}))
	assert.False(t, c.Insert(s, 2, Result{Cost: 1.25, Guess: 4, Height: 2}))

	r, ok := c.Get(s, 2)
	require.True(t, ok)
	assert.Equal(t, 1.5, r.Cost)
	assert.Equal(t, 1, r.Guess)
}

func TestConcurrentInserts(t *testing.T) {
	c := New(horizon, 0, 0)
	const workers, keys = 8, 500

	var wg sync.WaitGroup
	wins := make([]int, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range keys {
				depth := 1 + k%horizon
				if c.Insert(state(k), depth, Result{Cost: float64(k), Guess: w, Height: 1}) {
					wins[w]++
				}
			}
		}()
	}
	wg.Wait()

	total := 0
	for _, n := range wins {
		total += n
	}
	assert.Equal(t, keys, total)

	clean, tainted := c.Len()
	assert.Equal(t, keys, clean+tainted)
	for k := range keys {
		r, ok := c.Get(state(k), 1+k%horizon)
		require.True(t, ok)
		assert.Equal(t, float64(k), r.Cost)
	}
}

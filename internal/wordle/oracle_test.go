package wordle

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomWords returns n distinct words over a small alphabet, so repeated
// letters and shared positions are common.
func randomWords(n int, seed uint64) []string {
	r := rand.New(rand.NewPCG(seed, seed+1))
	const alphabet = "abcdeilnorst"
	seen := make(map[string]bool, n)
	words := make([]string, 0, n)
	for len(words) < n {
		b := make([]byte, Length)
		for i := range b {
			b[i] = alphabet[r.IntN(len(alphabet))]
		}
		if w := string(b); !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	return words
}

func newTestOracle(t *testing.T, nAnswers, nExtra int) *Oracle {
	t.Helper()
	words := randomWords(nAnswers+nExtra, 7)
	o, err := NewOracle(words[:nAnswers], words)
	require.NoError(t, err)
	return o
}

func TestOracleMatchesScore(t *testing.T) {
	o := newTestOracle(t, 150, 50)
	for g := 0; g < o.NumGuesses(); g++ {
		for a := 0; a < o.NumAnswers(); a++ {
			require.Equal(t, Score(o.Guess(g), o.Answer(a)), o.Pattern(g, a))
		}
	}
}

func TestOracleAnswerGuess(t *testing.T) {
	o := newTestOracle(t, 70, 10)
	for a := 0; a < o.NumAnswers(); a++ {
		g := o.AnswerGuess(a)
		assert.Equal(t, o.Answer(a), o.Guess(g))
		assert.Equal(t, AllGreen, o.Pattern(g, a))
	}
	g, ok := o.GuessIndex(o.Guess(75))
	assert.True(t, ok)
	assert.Equal(t, 75, g)
	_, ok = o.GuessIndex("zzzzz")
	assert.False(t, ok)
}

func TestNewOracleErrors(t *testing.T) {
	_, err := NewOracle([]string{"crane"}, []string{"slate"})
	assert.ErrorIs(t, err, ErrMissingAnswer)

	_, err = NewOracle([]string{"crane"}, []string{"crane", "CRANE"})
	assert.ErrorIs(t, err, ErrBadWord)

	_, err = NewOracle(make([]string, MaxAnswers+1), nil)
	assert.ErrorIs(t, err, ErrCorpusSize)
}

// filter is the obvious one-bit-at-a-time Transition.
func filter(o *Oracle, s State, g int, p Pattern) State {
	var next State
	for a := range s.All {
		if o.Pattern(g, a) == p {
			next.Set(a)
		}
	}
	return next
}

func TestTransition(t *testing.T) {
	o := newTestOracle(t, 150, 30)
	r := rand.New(rand.NewPCG(1, 2))

	states := []State{o.Root()}
	for range 10 {
		var s State
		for a := 0; a < o.NumAnswers(); a++ {
			if r.IntN(3) == 0 {
				s.Set(a)
			}
		}
		states = append(states, s)
	}

	for _, s := range states {
		for _, g := range []int{0, 17, 149, 179} {
			var union State
			for p := Pattern(0); p < NumPatterns; p++ {
				next := o.Transition(s, g, p)
				require.Equal(t, filter(o, s, g, p), next, "guess %d pattern %v", g, p)
				require.True(t, next.SubsetOf(&s))
				union = union.Union(&next)
			}
			require.Equal(t, s, union)
		}
	}
}

func TestTransitionNeverMatchesPadding(t *testing.T) {
	o := newTestOracle(t, 3, 0)
	var full State
	for w := range full {
		full[w] = ^uint64(0)
	}
	for p := Pattern(0); p < NumPatterns; p++ {
		next := o.Transition(full, 0, p)
		for a := range next.All {
			require.Less(t, a, o.NumAnswers())
		}
	}
}

func TestPartition(t *testing.T) {
	o := newTestOracle(t, 100, 0)
	s := o.Root()
	var counts [NumPatterns]int
	o.Partition(&s, 5, &counts)

	total := 0
	for p, c := range counts {
		total += c
		next := o.Transition(s, 5, Pattern(p))
		assert.Equal(t, c, next.Count())
	}
	assert.Equal(t, s.Count(), total)
	assert.Equal(t, 1, counts[AllGreen])
}

func TestGuessSet(t *testing.T) {
	g := FullGuessSet(130)
	assert.Equal(t, 130, g.Len())
	assert.True(t, g.Has(129))

	h := GuessSetOf(130, 99, 3, 64)
	assert.Equal(t, 3, h.Len())
	if diff := cmp.Diff([]int{3, 64, 99}, h.Slice()); diff != "" {
		t.Errorf("Slice() mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, h.Equal(g))
	assert.True(t, h.Equal(GuessSetOf(130, 3, 64, 99)))
}

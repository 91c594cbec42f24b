package wordle

import "github.com/bits-and-blooms/bitset"

// GuessSet is the set of guesses still worth trying at a node. Unlike State it
// is never a cache key, so it uses a growable bitset sized to the guess corpus.
type GuessSet struct {
	bits *bitset.BitSet
}

// NewGuessSet returns an empty set over n guesses.
func NewGuessSet(n int) GuessSet {
	return GuessSet{bits: bitset.New(uint(n))}
}

// FullGuessSet returns the set of all n guesses.
func FullGuessSet(n int) GuessSet {
	g := NewGuessSet(n)
	g.bits.FlipRange(0, uint(n))
	return g
}

// GuessSetOf returns a set over n guesses containing only the given indices.
func GuessSetOf(n int, idx ...int) GuessSet {
	g := NewGuessSet(n)
	for _, i := range idx {
		g.Add(i)
	}
	return g
}

func (g GuessSet) Add(i int) {
	g.bits.Set(uint(i))
}

func (g GuessSet) Has(i int) bool {
	return g.bits.Test(uint(i))
}

func (g GuessSet) Len() int {
	return int(g.bits.Count())
}

func (g GuessSet) Equal(o GuessSet) bool {
	return g.bits.Equal(o.bits)
}

// All yields the guesses in increasing index order.
func (g GuessSet) All(yield func(int) bool) {
	for i, ok := g.bits.NextSet(0); ok; i, ok = g.bits.NextSet(i + 1) {
		if !yield(int(i)) {
			return
		}
	}
}

// Slice returns the guesses in increasing index order.
func (g GuessSet) Slice() []int {
	out := make([]int, 0, g.Len())
	for i := range g.All {
		out = append(out, i)
	}
	return out
}

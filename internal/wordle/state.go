package wordle

import "math/bits"

const (
	wordBits = 64
	// StateWords fixes the width of State. It bounds the answer corpus at
	// StateWords*64 words.
	StateWords = 40
	MaxAnswers = StateWords * wordBits
)

// State is the set of answers still consistent with the feedback seen so far.
// It is a plain array so it can be copied, compared with == and used as a
// map key.
type State [StateWords]uint64

// FullState returns the state with the first n answers possible.
func FullState(n int) State {
	var s State
	for w := 0; w < n/wordBits; w++ {
		s[w] = ^uint64(0)
	}
	if rem := n % wordBits; rem != 0 {
		s[n/wordBits] = 1<<rem - 1
	}
	return s
}

func (s *State) Set(i int) {
	s[i/wordBits] |= 1 << (i % wordBits)
}

func (s *State) Test(i int) bool {
	return s[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Count returns the number of possible answers.
func (s *State) Count() int {
	c := 0
	for _, w := range s {
		c += bits.OnesCount64(w)
	}
	return c
}

func (s *State) Empty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every answer in s is also in o.
func (s *State) SubsetOf(o *State) bool {
	for w := range s {
		if s[w]&^o[w] != 0 {
			return false
		}
	}
	return true
}

// Union returns s ∪ o.
func (s *State) Union(o *State) State {
	u := *s
	for w := range u {
		u[w] |= o[w]
	}
	return u
}

// All yields the index of every possible answer in increasing order. Empty
// words are skipped without looking at their bits.
func (s *State) All(yield func(int) bool) {
	for w, word := range s {
		for word != 0 {
			if !yield(w*wordBits + bits.TrailingZeros64(word)) {
				return
			}
			word &= word - 1
		}
	}
}

// Indices appends the possible answers to dst.
func (s *State) Indices(dst []int) []int {
	for i := range s.All {
		dst = append(dst, i)
	}
	return dst
}

const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211
)

// Hash folds the state's words into an FNV-1a style hash.
func (s *State) Hash(seed uint64) uint64 {
	h := uint64(fnvOffset) ^ seed
	for _, w := range s {
		h ^= w
		h *= fnvPrime
	}
	return h
}

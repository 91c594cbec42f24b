package solver

import (
	"cmp"
	"slices"

	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211
)

type candidate struct {
	hash  uint64
	guess int
}

// Prune drops the guesses in allowed that cannot help at s.
//
// A guess's signature is the feedback it gives against each live answer in
// order. Guesses whose signature is constant never split s and are dropped.
// Guesses with identical signatures split s the same way; only the lowest
// index of each is kept. When s has fewer than PruneThreshold answers only
// the constant-signature check is done.
func (w *Search) Prune(s *wordle.State, allowed wordle.GuessSet) wordle.GuessSet {
	w.Stats.PruneCalls++

	w.live = s.Indices(w.live[:0])
	kept := wordle.NewGuessSet(w.oracle.NumGuesses())
	if len(w.live) == 0 {
		return kept
	}
	dedup := len(w.live) >= w.opts.PruneThreshold

	n := 0
	cands := w.cands[:0]
	for g := range allowed.All {
		w.Stats.ActionsChecked++
		if w.constantSignature(g) {
			w.Stats.UselessPruned++
			continue
		}
		if !dedup {
			kept.Add(g)
			n++
			continue
		}
		cands = append(cands, candidate{w.signatureHash(g), g})
	}
	w.cands = cands

	slices.SortFunc(cands, func(a, b candidate) int {
		return cmp.Or(cmp.Compare(a.hash, b.hash), cmp.Compare(a.guess, b.guess))
	})

	for start := 0; start < len(cands); {
		end := start + 1
		for end < len(cands) && cands[end].hash == cands[start].hash {
			end++
		}

		// Equal hashes are checked in full against each guess already kept
		// from the run, so a collision never merges different signatures.
		reps := w.reps[:0]
	run:
		for _, c := range cands[start:end] {
			for _, r := range reps {
				if w.sameSignature(c.guess, r) {
					w.Stats.DuplicatesPruned++
					continue run
				}
			}
			reps = append(reps, c.guess)
			kept.Add(c.guess)
			n++
		}
		w.reps = reps
		start = end
	}

	w.Stats.ActionsKept += int64(n)
	return kept
}

func (w *Search) constantSignature(g int) bool {
	first := w.oracle.Pattern(g, w.live[0])
	for _, a := range w.live[1:] {
		if w.oracle.Pattern(g, a) != first {
			return false
		}
	}
	return true
}

// fnvSignature is the default signatureHash: FNV-1a over the signature.
func (w *Search) fnvSignature(g int) uint64 {
	hash := uint64(fnvOffset)
	for _, a := range w.live {
		hash = (hash ^ uint64(w.oracle.Pattern(g, a))) * fnvPrime
	}
	return hash
}

func (w *Search) sameSignature(g1, g2 int) bool {
	for _, a := range w.live {
		if w.oracle.Pattern(g1, a) != w.oracle.Pattern(g2, a) {
			return false
		}
	}
	return true
}

package wordle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var ErrMissingAnswer = errors.New("answer not in guess corpus")

const (
	// noPattern pads table rows; it never equals a real code.
	noPattern = 0xff

	lanes    = 0x0101010101010101
	low7     = 0x7f7f7f7f7f7f7f7f
	gatherLo = 0x0102040810204080
)

// Oracle holds the feedback code of every (guess, answer) pair.
type Oracle struct {
	answers []string
	guesses []string
	byWord  map[string]int
	// answerGuess[a] is the guess index spelling answer a.
	answerGuess []int

	// table[g*stride+a] is Score(guesses[g], answers[a]). Rows are padded
	// to whole state words so Transition never reads past a row.
	table  []byte
	stride int
	words  int
}

// NewOracle scores every guess against every answer. Every answer must also
// appear among the guesses.
func NewOracle(answers, guesses []string) (*Oracle, error) {
	if len(answers) > MaxAnswers {
		return nil, fmt.Errorf("%d answers exceeds the maximum of %d: %w", len(answers), MaxAnswers, ErrCorpusSize)
	}

	words := (len(answers) + wordBits - 1) / wordBits
	o := &Oracle{
		answers:     answers,
		guesses:     guesses,
		byWord:      make(map[string]int, len(guesses)),
		answerGuess: make([]int, len(answers)),
		stride:      words * wordBits,
		words:       words,
	}
	for i, g := range guesses {
		if !ValidWord(g) {
			return nil, fmt.Errorf("guess %d %q: %w", i, g, ErrBadWord)
		}
		if _, ok := o.byWord[g]; !ok {
			o.byWord[g] = i
		}
	}
	for a, w := range answers {
		if !ValidWord(w) {
			return nil, fmt.Errorf("answer %d %q: %w", a, w, ErrBadWord)
		}
		g, ok := o.byWord[w]
		if !ok {
			return nil, fmt.Errorf("%q: %w", w, ErrMissingAnswer)
		}
		o.answerGuess[a] = g
	}

	o.table = make([]byte, len(guesses)*o.stride)
	o.build()
	return o, nil
}

func (o *Oracle) build() {
	var g errgroup.Group
	workers := runtime.GOMAXPROCS(0)
	chunk := max(1, (len(o.guesses)+workers-1)/workers)
	for start := 0; start < len(o.guesses); start += chunk {
		end := min(start+chunk, len(o.guesses))
		g.Go(func() error {
			for gi := start; gi < end; gi++ {
				row := o.row(gi)
				for a, answer := range o.answers {
					row[a] = byte(Score(o.guesses[gi], answer))
				}
				for a := len(o.answers); a < o.stride; a++ {
					row[a] = noPattern
				}
			}
			return nil
		})
	}
	// Workers never fail.
	_ = g.Wait()
}

func (o *Oracle) row(g int) []byte {
	return o.table[g*o.stride : (g+1)*o.stride]
}

func (o *Oracle) NumAnswers() int { return len(o.answers) }
func (o *Oracle) NumGuesses() int { return len(o.guesses) }

func (o *Oracle) Answer(a int) string { return o.answers[a] }
func (o *Oracle) Guess(g int) string  { return o.guesses[g] }

// GuessIndex returns the index of word in the guess corpus.
func (o *Oracle) GuessIndex(word string) (int, bool) {
	g, ok := o.byWord[word]
	return g, ok
}

// AnswerGuess returns the guess index spelling answer a.
func (o *Oracle) AnswerGuess(a int) int {
	return o.answerGuess[a]
}

// Pattern returns the feedback for guess g against answer a.
func (o *Oracle) Pattern(g, a int) Pattern {
	return Pattern(o.table[g*o.stride+a])
}

// Root returns the state with every answer possible.
func (o *Oracle) Root() State {
	return FullState(len(o.answers))
}

// Partition counts, for every feedback code, how many answers in s produce it
// against guess g.
func (o *Oracle) Partition(s *State, g int, counts *[NumPatterns]int) {
	*counts = [NumPatterns]int{}
	row := o.row(g)
	for a := range s.All {
		counts[row[a]]++
	}
}

// Transition returns the answers of s that give feedback p against guess g.
//
// Each state word is masked eight table bytes at a time: XOR against the
// broadcast code turns matches into zero bytes, the zero bytes are flagged in
// their high bit and the eight flags are gathered into one byte by a multiply.
func (o *Oracle) Transition(s State, g int, p Pattern) State {
	var next State
	row := o.row(g)
	want := uint64(p) * lanes
	for w := 0; w < o.words; w++ {
		word := s[w]
		if word == 0 {
			continue
		}
		lane := row[w*wordBits : (w+1)*wordBits]
		var mask uint64
		for c := 0; c < 8; c++ {
			mask |= matchMask(binary.LittleEndian.Uint64(lane[c*8:]), want) << (c * 8)
		}
		next[w] = word & mask
	}
	return next
}

// matchMask returns a byte whose bit k is set iff byte k of x equals byte k
// of want.
func matchMask(x, want uint64) uint64 {
	t := x ^ want
	y := (t & low7) + low7
	y = ^(y | t | low7)
	return ((y >> 7) * gatherLo) >> 56
}

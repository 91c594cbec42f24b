// Package wordle scores guesses against answers and tracks which answers are
// still possible during a search.
package wordle

import (
	"fmt"
	"strings"
)

const (
	Length  = 5
	letters = 26

	// NumPatterns is the number of distinct feedback codes, 3^Length.
	NumPatterns = 243
	// AllGreen is the code for a guess equal to the answer.
	AllGreen Pattern = NumPatterns - 1
)

type clue uint8

const (
	gray clue = iota
	yellow
	green
)

// Pattern is the feedback for one guess against one answer: the clue for
// letter i is the i-th base-3 digit.
type Pattern uint8

// low 5 bits: bitmask of where the letter is
// high 3 bits: int3 of how many there are
type (
	charIndex uint8
	index     [letters]charIndex
)

func newIndex(word string) index {
	var ret index
	for i, c := range []byte(word) {
		ret[c-'a'] |= 1 << i
		ret[c-'a'] += 1 << Length
	}
	return ret
}

func (ci charIndex) count() uint8 {
	return uint8(ci >> Length)
}

func (ci charIndex) at(i int) bool {
	return ci&(1<<i) != 0
}

// Score returns the feedback shown when guess is played against answer.
// Exact matches are coloured first and use up that letter's count in the
// answer; the remaining count goes to misplaced copies left to right.
func Score(guess, answer string) Pattern {
	if len(guess) != Length {
		panic(fmt.Sprintf("invalid guess: len(%v) = %v", guess, len(guess)))
	}
	if len(answer) != Length {
		panic(fmt.Sprintf("invalid answer: len(%v) = %v", answer, len(answer)))
	}

	var result [Length]clue
	guessIndex := newIndex(guess)
	answerIndex := newIndex(answer)
	for i, ci := range guessIndex {
		ai := answerIndex[i]
		switch {
		case ci == 0, ai == 0:
			// letter not guessed, or not in the answer: zero value is gray
			continue
		case ci.count() <= ai.count():
			// guessed at most the right number of this letter: they'll all be
			// green/yellow.
			for j := 0; j < Length; j++ {
				if ci.at(j) {
					if ai.at(j) {
						result[j] = green
					} else {
						result[j] = yellow
					}
				}
			}
		default:
			// guessed too many of this letter: correct positions are green,
			// then the first n misplaced ones are yellow, rest are gray.
			need := ai.count()
			for j := 0; j < Length; j++ {
				if ci.at(j) && ai.at(j) {
					result[j] = green
					need--
				}
			}
			for j := 0; j < Length && need > 0; j++ {
				if ci.at(j) && !ai.at(j) {
					result[j] = yellow
					need--
				}
			}
		}
	}

	return encode(result)
}

func encode(result [Length]clue) Pattern {
	var p Pattern
	mul := Pattern(1)
	for _, c := range result {
		p += Pattern(c) * mul
		mul *= 3
	}
	return p
}

func decode(p Pattern) [Length]clue {
	var result [Length]clue
	for i := range result {
		result[i] = clue(p % 3)
		p /= 3
	}
	return result
}

// String renders the pattern as g (green), y (yellow) and - (gray).
func (p Pattern) String() string {
	var b strings.Builder
	for _, c := range decode(p) {
		switch c {
		case gray:
			b.WriteByte('-')
		case yellow:
			b.WriteByte('y')
		case green:
			b.WriteByte('g')
		}
	}
	return b.String()
}

// ParsePattern is the inverse of Pattern.String.
func ParsePattern(s string) (Pattern, error) {
	if len(s) != Length {
		return 0, fmt.Errorf("pattern %q: want %d clues, got %d", s, Length, len(s))
	}
	var result [Length]clue
	for i, c := range []byte(s) {
		switch c {
		case '-', '_', '.':
			result[i] = gray
		case 'y', 'Y':
			result[i] = yellow
		case 'g', 'G':
			result[i] = green
		default:
			return 0, fmt.Errorf("pattern %q: bad clue %q", s, c)
		}
	}
	return encode(result), nil
}

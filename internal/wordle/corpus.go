package wordle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrCorpusSize = errors.New("corpus size mismatch")
	ErrBadWord    = errors.New("invalid word")
)

// LoadCorpus reads a newline-delimited word list. want is the exact number of
// words the file must contain.
func LoadCorpus(path string, want int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	words, err := ReadCorpus(f, want)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// ReadCorpus is LoadCorpus on an already open reader.
func ReadCorpus(r io.Reader, want int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	words := make([]string, 0, want)
	for line := 1; scanner.Scan(); line++ {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		if !ValidWord(w) {
			return nil, fmt.Errorf("line %d: %q: %w", line, w, ErrBadWord)
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	if len(words) != want {
		return nil, fmt.Errorf("expected %d words, got %d: %w", want, len(words), ErrCorpusSize)
	}
	return words, nil
}

// ValidWord reports whether w is five lower-case ASCII letters.
func ValidWord(w string) bool {
	if len(w) != Length {
		return false
	}
	for _, c := range []byte(w) {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

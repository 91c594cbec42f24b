package replay

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

type metricImpl[T constraints.Ordered] struct {
	name  string
	value func(*Histogram) T
	// perTarget also reports the targets with the largest value.
	perTarget bool
}

func (m *metricImpl[T]) run(r *Report) string {
	overall := m.value(&r.Total)
	if !m.perTarget {
		return fmt.Sprintf("%v: %v", m.name, overall)
	}

	var worst T
	var worstWords []string
	for w, h := range r.ByTarget {
		if h.Total() == 0 {
			continue
		}
		badness := m.value(h)
		switch {
		case worstWords == nil || worst < badness:
			worstWords = []string{w}
			worst = badness
		case worst == badness:
			worstWords = append(worstWords, w)
		}
	}
	sort.Strings(worstWords)
	return fmt.Sprintf("%v: %v (%v)", m.name, overall, strings.Join(worstWords, " "))
}

type metric interface {
	run(r *Report) string
}

var metrics = []metric{
	&metricImpl[int]{"worst", func(h *Histogram) int {
		for i := histSize - 1; i >= 0; i-- {
			if h[i] > 0 {
				return i
			}
		}
		return 0
	}, true},
	&metricImpl[int]{"best", func(h *Histogram) int {
		for i := range histSize {
			if h[i] > 0 {
				return i
			}
		}
		return 0
	}, false},
	&metricImpl[float64]{"average", func(h *Histogram) float64 {
		sum := 0
		ct := 0
		for i := range histSize {
			sum += i * h[i]
			ct += h[i]
		}
		if ct == 0 {
			return 0
		}
		return float64(sum) / float64(ct)
	}, false},
	&metricImpl[float64]{"not-in-6", func(h *Histogram) float64 {
		cutoff := 6
		win := 0
		loss := 0
		for i := 0; i <= cutoff; i++ {
			win += h[i]
		}
		for i := cutoff + 1; i < histSize; i++ {
			loss += h[i]
		}
		if win+loss == 0 {
			return 0
		}
		return 100 * float64(loss) / float64(win+loss)
	}, false},
}

// Summary returns one line per metric: worst, best, average and the
// percentage of games not won in six guesses.
func (r *Report) Summary() []string {
	lines := make([]string, len(metrics))
	for i, m := range metrics {
		lines[i] = m.run(r)
	}
	return lines
}

package scheduler

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/benjaminjkraft/wordle-openers/internal/memo"
	"github.com/benjaminjkraft/wordle-openers/internal/solver"
	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

var (
	testAnswers = []string{"crane", "slate", "trace", "crate", "grace", "brace", "space", "place"}
	testGuesses = append(slices.Clone(testAnswers),
		"soare", "adieu", "pious", "lynch", "thumb", "dwarf", "gecko", "blimp")
)

func newSolver(t *testing.T) *solver.Solver {
	t.Helper()
	o, err := wordle.NewOracle(testAnswers, testGuesses)
	require.NoError(t, err)
	opts := solver.DefaultOptions()
	return solver.New(o, memo.New(opts.Horizon, 64, 64), opts)
}

func TestRunFindsBestOpener(t *testing.T) {
	var out bytes.Buffer
	sc := New(newSolver(t), Options{Workers: 4, Output: &out, Logger: zerolog.Nop()})

	summary, err := sc.Run(context.Background())
	require.NoError(t, err)

	// slate, trace and crate tie; the lowest index wins
	assert.Equal(t, 1, summary.Best)
	assert.Equal(t, "slate", summary.BestWord)
	assert.InDelta(t, 2.125, summary.BestCost, 1e-9)

	require.Len(t, summary.Results, len(testGuesses))
	for i, r := range summary.Results {
		assert.Equal(t, i, r.Guess)
		assert.Equal(t, testGuesses[i], r.Word)
	}
	adieu := summary.Results[9]
	assert.InDelta(t, 3.125, adieu.Cost, 1e-9)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, len(testGuesses))
	assert.Contains(t, out.String(), "[NEW BEST]")

	assert.Positive(t, summary.Stats.NodesVisited)
	assert.Equal(t, summary.Stats, sc.Stats())
	finished, total := sc.Progress()
	assert.Equal(t, len(testGuesses), finished)
	assert.Equal(t, len(testGuesses), total)
}

func TestRunIsDeterministic(t *testing.T) {
	run := func(workers int) Summary {
		sc := New(newSolver(t), Options{Workers: workers, Logger: zerolog.Nop()})
		summary, err := sc.Run(context.Background())
		require.NoError(t, err)
		return summary
	}

	one := run(1)
	for _, workers := range []int{2, 8} {
		many := run(workers)
		assert.Equal(t, one.Best, many.Best, "workers=%d", workers)
		assert.Equal(t, one.BestCost, many.BestCost, "workers=%d", workers)
		require.Len(t, many.Results, len(one.Results))
		for i := range one.Results {
			assert.InDelta(t, one.Results[i].Cost, many.Results[i].Cost, 1e-12,
				"workers=%d opener=%s", workers, one.Results[i].Word)
		}
	}
}

func TestRunSubset(t *testing.T) {
	// soare, adieu, blimp
	sc := New(newSolver(t), Options{Workers: 2, Openers: []int{8, 9, 15}, Logger: zerolog.Nop()})
	summary, err := sc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "blimp", summary.BestWord)
	assert.InDelta(t, 2.375, summary.BestCost, 1e-9)
	assert.Len(t, summary.Results, 3)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := New(newSolver(t), Options{Workers: 2, Logger: zerolog.Nop()})
	summary, err := sc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Results)
	assert.Equal(t, memo.NoGuess, summary.Best)
}

func TestRunProgressBar(t *testing.T) {
	var bar bytes.Buffer
	sc := New(newSolver(t), Options{Workers: 2, Openers: []int{0, 1}, Bar: &bar, Logger: zerolog.Nop()})
	_, err := sc.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, bar.String(), "openers")
}

func TestRunRecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	sc := New(newSolver(t), Options{Workers: 3, Logger: zerolog.Nop(), TracerProvider: tp})
	_, err := sc.Run(context.Background())
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, len(testGuesses))
	var openers []string
	for _, span := range spans {
		assert.Equal(t, "EvaluateOpener", span.Name())
		for _, kv := range span.Attributes() {
			if kv.Key == "opener" {
				openers = append(openers, kv.Value.AsString())
			}
		}
	}
	slices.Sort(openers)
	want := slices.Sorted(slices.Values(testGuesses))
	assert.Equal(t, want, openers)
}
